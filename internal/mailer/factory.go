package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/content-gateway/internal/config"
	"go.uber.org/zap"
)

// FromConfig builds a Mailer with every enabled provider in cfg.
func FromConfig(cfg config.MailConfig, log *zap.Logger) (*Mailer, error) {
	m := New(cfg.From)
	for _, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}

		var (
			p   Provider
			err error
		)
		switch strings.ToLower(strings.TrimSpace(pc.Kind)) {
		case "sendgrid":
			if strings.TrimSpace(pc.APIKey) == "" {
				return nil, fmt.Errorf("mail provider %q: api_key is required", pc.Name)
			}
			p = NewSendGridProvider(pc.Name, pc.BaseURL, pc.APIKey, pc.TimeoutMs)
		case "smtp":
			p, err = NewSMTPProvider(pc.Name, pc.Host, pc.Port, pc.User, pc.Pass, pc.TimeoutMs)
		case "log":
			p = NewLogProvider(pc.Name, log)
		default:
			err = fmt.Errorf("unknown kind %q", pc.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("mail provider %q: %w", pc.Name, err)
		}

		m.Add(p, NewBreaker(pc.Breaker.FailThreshold, time.Duration(pc.Breaker.OpenForMs)*time.Millisecond))
	}

	if m.Len() == 0 {
		return nil, fmt.Errorf("no mail providers enabled in config")
	}
	return m, nil
}
