package domain

import "context"

// Rule is a business rule guarding a state transition.
// IsSatisfiedBy may consult injected capabilities, so it can fail for
// infrastructure reasons; that error is returned as is.
type Rule interface {
	IsSatisfiedBy(ctx context.Context) (bool, error)
	ViolationMessage() (string, int)
}

// CheckRule evaluates the rule and converts an unsatisfied result into a RuleViolation.
func CheckRule(ctx context.Context, rule Rule) error {
	ok, err := rule.IsSatisfiedBy(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	message, code := rule.ViolationMessage()
	return &RuleViolation{Message: message, Code: code}
}
