package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/notification"
)

// NotificationService turns account events into outbound email. Delivery
// failures are logged for operators and never surface to the user who
// triggered the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     notification.EmailSender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender notification.EmailSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if err := n.sender.SendWelcome(ctx, payload.Email, payload.Name); err != nil {
		n.logger.Error("failed to send welcome email",
			zap.String("user_id", event.UserID),
			zap.Error(err))
		return err
	}
	n.logger.Info("welcome email sent", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if err := n.sender.SendPasswordReset(ctx, payload.Email, payload.Token); err != nil {
		n.logger.Error("failed to send password reset email",
			zap.String("user_id", event.UserID),
			zap.Error(err))
		return err
	}
	n.logger.Info("password reset email sent", zap.String("user_id", event.UserID))
	return nil
}
