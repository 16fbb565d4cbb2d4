package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/gomail.v2"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("expected port validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}
	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.com"},
		Subject: "Test",
		Body:    "Hello",
	})
	if !errors.Is(err, ErrSMTPDisabled) {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func newTestMailer(t *testing.T, deliver deliverFunc) *smtpMailer {
	t.Helper()
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}
	sm := mailer.(*smtpMailer)
	sm.deliver = deliver
	return sm
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	var captured bytes.Buffer
	sm := newTestMailer(t, func(_ SMTPSettings, msg *gomail.Message) error {
		_, err := msg.WriteTo(&captured)
		return err
	})

	err := sm.Send(context.Background(), Message{
		To:       []string{"alice@example.com", "alice@example.com", " "},
		Subject:  "Welcome\r\naboard",
		Body:     "Hello Alice",
		HTMLBody: "<p>Hello Alice</p>",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	content := captured.String()
	for _, want := range []string{
		"From: no-reply@example.com",
		"To: alice@example.com",
		"Subject: Welcome  aboard",
		"Hello Alice",
		"text/html",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in message, got %q", want, content)
		}
	}
}

func TestSMTPMailerRejectsInvalidRecipients(t *testing.T) {
	sm := newTestMailer(t, func(SMTPSettings, *gomail.Message) error {
		t.Fatal("deliver must not be called")
		return nil
	})

	if err := sm.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected missing recipient error")
	}
	if err := sm.Send(context.Background(), Message{To: []string{"not-an-address"}}); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}

func TestSMTPMailerHonoursContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	sm := newTestMailer(t, func(SMTPSettings, *gomail.Message) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sm.Send(ctx, Message{To: []string{"bob@example.com"}, Body: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSMTPMailerDefaultTimeout(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    465,
		UseTLS:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}
	if mailer.(*smtpMailer).cfg.Timeout <= 0 {
		t.Fatal("expected timeout to be assigned")
	}
}
