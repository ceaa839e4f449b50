package uow

import "context"

type workKey struct{}

// WithWork returns a context carrying w.
func WithWork(ctx context.Context, w *Work) context.Context {
	return context.WithValue(ctx, workKey{}, w)
}

// FromContext returns the unit of work running for ctx, if any.
func FromContext(ctx context.Context) (*Work, bool) {
	w, ok := ctx.Value(workKey{}).(*Work)
	return w, ok
}
