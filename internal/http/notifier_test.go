package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/model"
)

type fakeDispatcher struct {
	got model.NotificationRequest
	err error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req model.NotificationRequest) (model.EmailAttempt, error) {
	f.got = req
	if f.err != nil {
		return model.EmailAttempt{}, f.err
	}
	return model.EmailAttempt{ID: "01J0"}, nil
}

func TestSendEmail(t *testing.T) {
	d := &fakeDispatcher{}
	s := NewNotifierServer(Options{}, d)

	rec := do(t, s.Handler(), http.MethodPost, "/send-email", `{"type":"news","setup":"Headline text","to":"a@b.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["status"] != "Email sent successfully" || body["id"] != "01J0" {
		t.Fatalf("body = %v", body)
	}
	if d.got.Type != "news" || d.got.Setup != "Headline text" || d.got.To != "a@b.com" {
		t.Fatalf("dispatched %+v", d.got)
	}
}

func TestSendEmailIgnoresClientID(t *testing.T) {
	d := &fakeDispatcher{}
	s := NewNotifierServer(Options{}, d)

	rec := do(t, s.Handler(), http.MethodPost, "/send-email",
		`{"id":"`+strings.Repeat("x", 64)+`","type":"joke","setup":"x","to":"a@b.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if d.got.ID != "" {
		t.Fatalf("client id reached dispatch: %q", d.got.ID)
	}
}

func TestSendEmailErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", errors.Join(errs.ErrValidation, errors.New("invalid content type")), http.StatusBadRequest},
		{"transport", errors.Join(errs.ErrTransport, errors.New("HTTP Error 401: Unauthorized")), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewNotifierServer(Options{}, &fakeDispatcher{err: tc.err})
			rec := do(t, s.Handler(), http.MethodPost, "/send-email", `{"type":"joke","to":"a@b.com"}`)
			if rec.Code != tc.code {
				t.Fatalf("status %d, want %d", rec.Code, tc.code)
			}
			body := decode(t, rec)
			if body["error"] != true || body["message"] != tc.err.Error() {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestSendEmailBadJSON(t *testing.T) {
	s := NewNotifierServer(Options{}, &fakeDispatcher{})
	rec := do(t, s.Handler(), http.MethodPost, "/send-email", `{"type":`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != true {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}
