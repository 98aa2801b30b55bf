package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridProvider posts to the SendGrid v3 mail send API.
type SendGridProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *rest.Client
}

func NewSendGridProvider(name, baseURL, apiKey string, timeoutMs int) *SendGridProvider {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}

	return &SendGridProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond}},
	}
}

func (p *SendGridProvider) Name() string { return p.name }

func (p *SendGridProvider) Send(ctx context.Context, e model.Email) error {
	m := mail.NewSingleEmailPlainText(mail.NewEmail("", e.From), e.Subject, mail.NewEmail("", e.To), e.Text)
	if e.ID != "" {
		m.SetCustomArg("attempt_id", e.ID)
	}

	req := sendgrid.GetRequest(p.apiKey, "/v3/mail/send", p.baseURL)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(m)

	res, err := p.client.SendWithContext(ctx, req)
	if err != nil {
		return err
	}

	if res.StatusCode/100 != 2 {
		body := strings.TrimSpace(res.Body)
		if len(body) > 1024 {
			body = body[:1024]
		}
		return fmt.Errorf("provider=%s status=%d body=%s", p.name, res.StatusCode, body)
	}

	return nil
}
