package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/observability"
	"github.com/spec-kit/account-security/internal/uow"
)

var (
	ErrUnknownCommand = errors.New("no handler registered for command")
	ErrUnknownQuery   = errors.New("no handler registered for query")
)

// CommandHandler runs one command inside the unit of work it is given.
type CommandHandler func(ctx context.Context, w *uow.Work, cmd Command) error

// QueryHandler answers one query inside the unit of work it is given.
type QueryHandler func(ctx context.Context, w *uow.Work, q Query) (any, error)

// CommandBus routes commands to their handler, each in its own unit of work.
type CommandBus struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
	uow      *uow.Manager
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewCommandBus creates an empty bus. metrics may be nil.
func NewCommandBus(manager *uow.Manager, logger *zap.Logger, metrics *observability.Metrics) *CommandBus {
	return &CommandBus{
		handlers: make(map[string]CommandHandler),
		uow:      manager,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds a handler to a command name, replacing any previous one.
func (b *CommandBus) Register(name string, handler CommandHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = handler
}

// Handle registers a handler typed on its command.
func Handle[C Command](b *CommandBus, handler func(ctx context.Context, w *uow.Work, cmd C) error) {
	var zero C
	b.Register(zero.CommandName(), func(ctx context.Context, w *uow.Work, cmd Command) error {
		typed, ok := cmd.(C)
		if !ok {
			return fmt.Errorf("command %s: unexpected type %T", cmd.CommandName(), cmd)
		}
		return handler(ctx, w, typed)
	})
}

// Dispatch runs cmd. A commit whose events could not all be published counts
// as success: the failure is logged and measured, not returned.
func (b *CommandBus) Dispatch(ctx context.Context, cmd Command) error {
	name := cmd.CommandName()
	b.mu.RLock()
	handler, ok := b.handlers[name]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	start := time.Now()
	err := b.uow.Do(ctx, func(ctx context.Context, w *uow.Work) error {
		return handler(ctx, w, cmd)
	})

	var dispatchErr *uow.DispatchError
	if errors.As(err, &dispatchErr) {
		b.logger.Error("command committed but events were not published",
			zap.String("command", name), zap.Error(err))
		b.metrics.RecordDispatchFailure(name)
		err = nil
	}
	b.metrics.ObserveCommand(name, err, time.Since(start))
	if err != nil {
		logFailure(b.logger, "command failed", name, err)
	}
	return err
}

// QueryBus routes queries to their handler. Queries share the unit of work
// machinery so reads see a consistent snapshot.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[string]QueryHandler
	uow      *uow.Manager
	logger   *zap.Logger
}

// NewQueryBus creates an empty bus.
func NewQueryBus(manager *uow.Manager, logger *zap.Logger) *QueryBus {
	return &QueryBus{
		handlers: make(map[string]QueryHandler),
		uow:      manager,
		logger:   logger,
	}
}

func (b *QueryBus) Register(name string, handler QueryHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = handler
}

// Answer registers a handler typed on its query and result.
func Answer[Q Query, R any](b *QueryBus, handler func(ctx context.Context, w *uow.Work, q Q) (R, error)) {
	var zero Q
	b.Register(zero.QueryName(), func(ctx context.Context, w *uow.Work, q Query) (any, error) {
		typed, ok := q.(Q)
		if !ok {
			return nil, fmt.Errorf("query %s: unexpected type %T", q.QueryName(), q)
		}
		return handler(ctx, w, typed)
	})
}

// Ask runs q and returns its untyped result.
func (b *QueryBus) Ask(ctx context.Context, q Query) (any, error) {
	name := q.QueryName()
	b.mu.RLock()
	handler, ok := b.handlers[name]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}

	var result any
	err := b.uow.Do(ctx, func(ctx context.Context, w *uow.Work) error {
		var err error
		result, err = handler(ctx, w, q)
		return err
	})
	var dispatchErr *uow.DispatchError
	if errors.As(err, &dispatchErr) {
		b.logger.Error("query published events", zap.String("query", name), zap.Error(err))
		err = nil
	}
	if err != nil {
		logFailure(b.logger, "query failed", name, err)
		return nil, err
	}
	return result, nil
}

// Ask runs q and asserts its result type.
func Ask[R any](ctx context.Context, b *QueryBus, q Query) (R, error) {
	var zero R
	result, err := b.Ask(ctx, q)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("query %s: result is %T, not %T", q.QueryName(), result, zero)
	}
	return typed, nil
}

// Expected domain failures are logged quietly; anything else is a warning.
func logFailure(logger *zap.Logger, msg, name string, err error) {
	fields := []zap.Field{zap.String("name", name), zap.Error(err)}
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrBusinessRule),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrUnauthenticated):
		logger.Debug(msg, fields...)
	default:
		logger.Warn(msg, fields...)
	}
}
