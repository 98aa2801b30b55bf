package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/jmehdipour/content-gateway/internal/model"
)

// SMTPProvider delivers over plain SMTP, upgrading with STARTTLS when the
// server offers it and authenticating with PLAIN when credentials are set.
type SMTPProvider struct {
	name      string
	host      string
	port      int
	auth      smtp.Auth
	tlsConfig *tls.Config
	dialer    *net.Dialer
	timeout   time.Duration
	now       func() time.Time
}

func NewSMTPProvider(name, host string, port int, user, pass string, timeoutMs int) (*SMTPProvider, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("smtp provider: host is required")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("smtp provider: invalid port %d", port)
	}
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}

	p := &SMTPProvider{
		name:      name,
		host:      host,
		port:      port,
		tlsConfig: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		dialer:    &net.Dialer{Timeout: 10 * time.Second},
		timeout:   time.Duration(timeoutMs) * time.Millisecond,
		now:       time.Now,
	}
	if strings.TrimSpace(user) != "" {
		p.auth = smtp.PlainAuth("", user, pass, host)
	}
	return p, nil
}

func (p *SMTPProvider) Name() string { return p.name }

func (p *SMTPProvider) Send(ctx context.Context, e model.Email) error {
	from, err := envelopeAddress(e.From)
	if err != nil {
		return fmt.Errorf("smtp provider: invalid from address: %w", err)
	}
	to, err := envelopeAddress(e.To)
	if err != nil {
		return fmt.Errorf("smtp provider: invalid recipient: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.deliver(ctx, from, to, p.buildMessage(e))
}

func (p *SMTPProvider) deliver(ctx context.Context, from, to string, message []byte) error {
	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))
	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp provider: dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp provider: new client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && p.tlsConfig != nil {
		if err := client.StartTLS(p.tlsConfig.Clone()); err != nil {
			return fmt.Errorf("smtp provider: starttls: %w", err)
		}
	}

	if p.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(p.auth); err != nil {
				return fmt.Errorf("smtp provider: auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp provider: mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp provider: rcpt to %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp provider: data: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp provider: data write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp provider: data close: %w", err)
	}

	if err := client.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("smtp provider: quit: %w", err)
	}
	return nil
}

func (p *SMTPProvider) buildMessage(e model.Email) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		if v == "" {
			return
		}
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(sanitizeHeader(v))
		buf.WriteString("\r\n")
	}

	header("From", e.From)
	header("To", e.To)
	header("Subject", e.Subject)
	header("Date", p.now().UTC().Format(time.RFC1123Z))
	if e.ID != "" {
		header("Message-Id", "<"+e.ID+"@"+p.host+">")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	buf.WriteString("\r\n")
	buf.WriteString(normalizeBody(e.Text))

	return buf.Bytes()
}

func envelopeAddress(v string) (string, error) {
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return "", err
	}
	return addr.Address, nil
}

func normalizeBody(body string) string {
	s := strings.ReplaceAll(body, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func sanitizeHeader(v string) string {
	s := strings.ReplaceAll(v, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
