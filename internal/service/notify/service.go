package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/util"
	"go.uber.org/zap"
)

var (
	ErrInvalidContentType = fmt.Errorf("invalid content type: %w", errs.ErrValidation)
	ErrMissingRecipient   = fmt.Errorf("recipient email not provided: %w", errs.ErrValidation)
)

// subjects is closed over the same set ParseContentType accepts.
var subjects = map[model.ContentType]string{
	model.ContentJoke:    "Here's a Joke for You!",
	model.ContentNews:    "Latest News Update",
	model.ContentWebpage: "Parsed Web Page",
}

// Subject returns the fixed subject line for t.
func Subject(t model.ContentType) (string, bool) {
	s, ok := subjects[t]
	return s, ok
}

// Transport sends one composed email and names the provider that took it.
type Transport interface {
	Send(ctx context.Context, e model.Email) (string, error)
}

// Service normalizes typed content into one email and hands it to the transport.
type Service struct {
	emails    repository.EmailsRepository
	transport Transport
	log       *zap.Logger
	now       func() time.Time
}

func New(emails repository.EmailsRepository, transport Transport, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{emails: emails, transport: transport, log: log, now: time.Now}
}

// Envelope validates req and reduces it to a ContentEnvelope. Type is checked
// before recipient, and both before anything else happens.
func Envelope(req model.NotificationRequest) (model.ContentEnvelope, error) {
	ct, ok := model.ParseContentType(req.Type)
	if !ok {
		return model.ContentEnvelope{}, fmt.Errorf("%q: %w", req.Type, ErrInvalidContentType)
	}

	to := util.NormalizeEmail(req.To)
	if to == "" {
		return model.ContentEnvelope{}, ErrMissingRecipient
	}

	return model.ContentEnvelope{ContentType: ct, To: to, Body: req.Setup}, nil
}

// Dispatch records the attempt, then makes one send. The returned attempt is
// populated whenever validation passed, including on transport failure.
func (s *Service) Dispatch(ctx context.Context, req model.NotificationRequest) (model.EmailAttempt, error) {
	env, err := Envelope(req)
	if err != nil {
		label := "invalid"
		if ct, ok := model.ParseContentType(req.Type); ok {
			label = ct.String()
		}
		metrics.EmailsTotal.WithLabelValues(label, "rejected").Inc()
		return model.EmailAttempt{}, err
	}

	subject, _ := Subject(env.ContentType)

	// contents.id is CHAR(26); anything that is not a ULID gets a fresh one
	id := req.ID
	if !util.ValidID(id) {
		id = util.NewID()
	}
	attempt := model.EmailAttempt{
		ID:          id,
		ContentType: env.ContentType,
		ToEmail:     env.To,
		Subject:     subject,
		Body:        env.Body,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.emails.InsertAttempt(ctx, attempt); err != nil {
		// the send still goes out; the missing row is only logged
		s.log.Error("record email attempt",
			zap.String("id", attempt.ID),
			zap.Error(fmt.Errorf("%w: %v", errs.ErrPersistence, err)))
	}

	provider, err := s.transport.Send(ctx, model.Email{
		ID:      attempt.ID,
		To:      attempt.ToEmail,
		Subject: attempt.Subject,
		Text:    attempt.Body,
	})
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(env.ContentType.String(), "failed").Inc()
		s.log.Warn("email send failed",
			zap.String("id", attempt.ID),
			zap.String("provider", provider),
			zap.String("content_type", env.ContentType.String()),
			zap.Error(err))
		return attempt, err
	}

	metrics.EmailsTotal.WithLabelValues(env.ContentType.String(), "sent").Inc()
	s.log.Info("email sent",
		zap.String("id", attempt.ID),
		zap.String("provider", provider),
		zap.String("to", attempt.ToEmail),
		zap.String("content_type", env.ContentType.String()))

	return attempt, nil
}
