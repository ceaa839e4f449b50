package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/account-security/internal/config"
	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/events"
)

// Subscriber is the part of an event bus notifications need.
type Subscriber interface {
	Subscribe(name string, handler events.Handler)
}

// NotificationService turns committed domain events into user notifications.
// Delivery is stubbed out with log lines.
type NotificationService struct {
	subscriber Subscriber
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(subscriber Subscriber, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		subscriber: subscriber,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.subscriber == nil {
		return
	}
	n.subscriber.Subscribe(security.EventCodeGenerated, n.handleCodeGenerated)
	n.subscriber.Subscribe(user.EventUserCreated, n.handleUserCreated)
	n.subscriber.Subscribe(user.EventUserEmailChanged, n.handleUserEmailChanged)
	n.subscriber.Subscribe(user.EventUserPasswordChanged, n.handleAccountNotice)
	n.subscriber.Subscribe(user.EventUserSuspended, n.handleAccountNotice)
	n.subscriber.Subscribe(user.EventUserSoftDeleted, n.handleAccountNotice)
	n.subscriber.Subscribe(user.EventUserRestored, n.handleAccountNotice)
}

func (n *NotificationService) handleCodeGenerated(ctx context.Context, event domain.Event) error {
	generated, ok := event.(security.CodeGenerated)
	if !ok {
		return nil
	}
	n.logger.Info("CodeGenerated",
		zap.String("user_id", generated.UserID.String()),
		zap.String("challenge_id", generated.ChallengeID.String()),
		zap.String("purpose", generated.Purpose.String()),
		zap.Int("codes", len(generated.Codes)))
	n.sendEmailNotificationStub(ctx, event, "")
	return nil
}

func (n *NotificationService) handleUserCreated(ctx context.Context, event domain.Event) error {
	created, ok := event.(user.UserCreated)
	if !ok {
		return nil
	}
	n.logger.Info("UserCreated", zap.String("user_id", created.UserID.String()))
	n.sendEmailNotificationStub(ctx, event, created.Email)
	return nil
}

func (n *NotificationService) handleUserEmailChanged(ctx context.Context, event domain.Event) error {
	changed, ok := event.(user.UserEmailChanged)
	if !ok {
		return nil
	}
	n.logger.Info("UserEmailChanged", zap.String("user_id", changed.UserID.String()))
	n.sendEmailNotificationStub(ctx, event, changed.Previous)
	n.sendEmailNotificationStub(ctx, event, changed.Email)
	return nil
}

func (n *NotificationService) handleAccountNotice(ctx context.Context, event domain.Event) error {
	n.logger.Info(event.EventName(), zap.String("user_id", event.AggregateID().String()))
	n.sendEmailNotificationStub(ctx, event, "")
	return nil
}

// An empty recipient means the user's current address, resolved at delivery.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event domain.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("event_type", event.EventName()))
}
