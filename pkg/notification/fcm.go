package notification

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/repository"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMService delivers push notifications through Firebase Cloud Messaging.
// A nil service (no credentials configured) reports every send as
// undelivered without error, so callers never special-case a missing setup.
type FCMService struct {
	client   *messaging.Client
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewFCMService creates the FCM sender. Initialization problems disable push
// rather than blocking startup.
func NewFCMService(credentialsFile string, userRepo *repository.UserRepository, logger *zap.Logger) (*FCMService, error) {
	if credentialsFile == "" {
		logger.Warn("firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		logger.Warn("failed to initialize firebase app, push notifications disabled", zap.Error(err))
		return nil, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		logger.Warn("failed to get messaging client, push notifications disabled", zap.Error(err))
		return nil, nil
	}

	logger.Info("firebase FCM initialized")
	return &FCMService{
		client:   client,
		userRepo: userRepo,
		logger:   logger,
	}, nil
}

// Send pushes a notification to every registered device of a user. Returns
// whether at least one device accepted the message; a user with zero
// registered devices yields false without error.
func (s *FCMService) Send(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}

	devices, err := s.userRepo.GetUserDevices(userID)
	if err != nil {
		return false, err
	}
	if len(devices) == 0 {
		return false, nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := s.client.SendMulticast(ctx, message)
	if err != nil {
		return false, err
	}

	if br.FailureCount > 0 {
		for idx, resp := range br.Responses {
			if !resp.Success {
				s.logger.Warn("FCM delivery failure",
					zap.String("token", tokens[idx]),
					zap.Error(resp.Error))
			}
		}
	}

	return br.SuccessCount > 0, nil
}
