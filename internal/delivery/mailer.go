// internal/delivery/mailer.go

// Package delivery consumes queued jobs and pushes finished messages through
// the email transport, auditing every attempt.
package delivery

import (
	"context"
	"fmt"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES client the mailer uses. Mocked in tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	ses       SESService
	fromEmail string
	enabled   bool
	logger    logger.Logger
}

func NewMailer(sesClient SESService, fromEmail string, enabled bool, log logger.Logger) *Mailer {
	return &Mailer{
		ses:       sesClient,
		fromEmail: fromEmail,
		enabled:   enabled,
		logger:    log.WithFields(map[string]interface{}{"component": "mailer"}),
	}
}

// Send pushes one resolved message through SES. When email delivery is
// disabled the message is logged and dropped without error.
func (m *Mailer) Send(ctx context.Context, msg models.EmailMessage) error {
	if len(msg.To) == 0 {
		return commonerrors.NewRecipientsEmptyError(fmt.Sprintf("subject: %s", msg.Subject))
	}

	if !m.enabled {
		m.logger.Info("email delivery disabled, message dropped", map[string]interface{}{
			"subject": msg.Subject,
			"to":      len(msg.To),
		})
		return nil
	}

	body := &types.Body{
		Text: &types.Content{Data: aws.String(msg.Body)},
	}
	if msg.HTML {
		body.Html = &types.Content{Data: aws.String(msg.Body)}
	}

	_, err := m.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses:  msg.To,
			CcAddresses:  msg.Cc,
			BccAddresses: msg.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body:    body,
		},
		Source: aws.String(m.fromEmail),
	})
	if err != nil {
		return commonerrors.NewDeliveryFailedError(err)
	}
	return nil
}
