package mailer

import (
	"context"

	"github.com/jmehdipour/content-gateway/internal/model"
	"go.uber.org/zap"
)

// LogProvider writes the message to the log instead of delivering it.
type LogProvider struct {
	name string
	log  *zap.Logger
}

func NewLogProvider(name string, log *zap.Logger) *LogProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogProvider{name: name, log: log}
}

func (p *LogProvider) Name() string { return p.name }

func (p *LogProvider) Send(ctx context.Context, e model.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.log.Info("email",
		zap.String("id", e.ID),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.Int("body_len", len(e.Text)))
	return nil
}
