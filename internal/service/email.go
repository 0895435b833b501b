package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	"market-tips/pkg/mailer"
	"market-tips/pkg/metrics"
	"market-tips/pkg/trace"
	"market-tips/pkg/utils"

	"github.com/google/uuid"
)

// EmailService renders and delivers tip digests. A send gets
// len(RetryDelays)+1 attempts; every attempt outcome is written to the
// delivery log and the event store.
type EmailService interface {
	// Deliver sends the digest to every configured recipient and returns
	// the number of successful sends.
	Deliver(ctx context.Context, tips []dto.TradingTip, data []dto.MarketData, deliveryType dto.DeliveryType) (int, error)
	SendWithRetry(ctx context.Context, content dto.EmailContent) error
	RenderHTML(content dto.EmailContent) (string, error)
	// RecentDeliveries returns the newest delivery log entries.
	RecentDeliveries(ctx context.Context, limit int) ([]model.DeliveryLog, error)
}

type emailService struct {
	cfg             *config.Config
	logger          *logger.Logger
	sender          mailer.Sender
	deliveryLogRepo repository.DeliveryLogRepository
	events          *eventstore.Store
	tmpl            *template.Template
	sleep           func(ctx context.Context, d time.Duration) error
}

func NewEmailService(
	cfg *config.Config,
	log *logger.Logger,
	sender mailer.Sender,
	deliveryLogRepo repository.DeliveryLogRepository,
	events *eventstore.Store,
) (EmailService, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"lower":  strings.ToLower,
		"upper":  strings.ToUpper,
		"price":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"change": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
		"volume": formatVolume,
		"join":   strings.Join,
	}).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	return &emailService{
		cfg:             cfg,
		logger:          log,
		sender:          sender,
		deliveryLogRepo: deliveryLogRepo,
		events:          events,
		tmpl:            tmpl,
		sleep:           sleepContext,
	}, nil
}

func (s *emailService) Deliver(ctx context.Context, tips []dto.TradingTip, data []dto.MarketData, deliveryType dto.DeliveryType) (int, error) {
	label := capitalize(string(deliveryType))
	subject := fmt.Sprintf("%s Market Tips - %s", label, time.Now().UTC().Format("2006-01-02"))

	sent := 0
	var errs []error
	for _, recipient := range s.cfg.Email.Recipients {
		content := dto.EmailContent{
			Recipient:    recipient,
			Subject:      subject,
			DeliveryType: deliveryType,
			Tips:         tips,
			MarketData:   data,
			GeneratedAt:  time.Now().UTC(),
		}
		if err := s.SendWithRetry(ctx, content); err != nil {
			errs = append(errs, fmt.Errorf("delivery to %s: %w", recipient, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

func (s *emailService) SendWithRetry(ctx context.Context, content dto.EmailContent) error {
	traceID := trace.FromContext(ctx)

	htmlBody, err := s.RenderHTML(content)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	msg := mailer.Message{
		Recipient: content.Recipient,
		Subject:   content.Subject,
		HTMLBody:  htmlBody,
		TextBody:  utils.StripHTML(htmlBody),
	}

	maxAttempts := len(s.cfg.Email.RetryDelays) + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.sender.Send(ctx, msg)
		if lastErr == nil {
			s.logDelivery(ctx, dto.DeliveryStatusSuccess, content, attempt, "")
			s.events.Add(traceID, eventstore.TypeEmailSendDone, "email",
				"email sent to "+content.Recipient,
				map[string]interface{}{"recipient": content.Recipient, "attempt": attempt}, 0)
			metrics.EmailsSentTotal.WithLabelValues(dto.DeliveryStatusSuccess).Inc()
			return nil
		}

		if attempt < maxAttempts {
			delay := s.cfg.Email.RetryDelays[attempt-1]
			s.logger.WarnContext(ctx, "Email send failed, scheduling retry",
				logger.StringField("recipient", content.Recipient),
				logger.IntField("attempt", attempt),
				logger.StringField("retry_delay", delay.String()),
				logger.ErrorField(lastErr))
			s.logDelivery(ctx, dto.DeliveryStatusRetrying, content, attempt, lastErr.Error())
			s.events.Add(traceID, eventstore.TypeEmailSendRetry, "email",
				fmt.Sprintf("send failed, retrying in %s", delay),
				map[string]interface{}{
					"recipient": content.Recipient,
					"attempt":   attempt,
					"error":     lastErr.Error(),
				}, 0)

			if err := s.sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		s.logger.ErrorContext(ctx, "Email send failed after all retry attempts",
			logger.StringField("recipient", content.Recipient),
			logger.IntField("attempts", maxAttempts),
			logger.ErrorField(lastErr))
		s.logDelivery(ctx, dto.DeliveryStatusFailed, content, attempt, lastErr.Error())
		s.events.Add(traceID, eventstore.TypeEmailSendFailed, "email",
			"send failed after all retry attempts",
			map[string]interface{}{
				"recipient": content.Recipient,
				"attempts":  maxAttempts,
				"error":     lastErr.Error(),
			}, 0)
		metrics.EmailsSentTotal.WithLabelValues(dto.DeliveryStatusFailed).Inc()
	}

	return lastErr
}

func (s *emailService) RecentDeliveries(ctx context.Context, limit int) ([]model.DeliveryLog, error) {
	return s.deliveryLogRepo.GetRecent(ctx, limit)
}

func (s *emailService) RenderHTML(content dto.EmailContent) (string, error) {
	var sb strings.Builder
	if err := s.tmpl.Execute(&sb, digestView{
		Label:       capitalize(string(content.DeliveryType)),
		Tips:        content.Tips,
		MarketData:  content.MarketData,
		GeneratedAt: content.GeneratedAt.Format("2006-01-02 15:04:05"),
	}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (s *emailService) logDelivery(ctx context.Context, status string, content dto.EmailContent, attempt int, errorMessage string) {
	entry := &model.DeliveryLog{
		ID:            uuid.NewString(),
		Recipient:     content.Recipient,
		Status:        status,
		DeliveryType:  string(content.DeliveryType),
		AttemptNumber: attempt,
		ErrorMessage:  errorMessage,
		AttemptedAt:   time.Now().UTC(),
	}
	if err := s.deliveryLogRepo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write delivery log", logger.ErrorField(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatVolume renders a dollar volume with thousands separators and no
// decimal places.
func formatVolume(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	var sb strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
