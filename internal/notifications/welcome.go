package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/mail"
)

// WelcomeSubject is the subject line of the sign-up email.
const WelcomeSubject = "Welcome to our IndiePitcher!"

// Welcomer delivers the sign-up email to a freshly created profile.
type Welcomer interface {
	SendWelcome(ctx context.Context, profile models.Profile) error
}

// MailWelcomer renders the welcome email and hands it to a mail.Mailer.
type MailWelcomer struct {
	mailer mail.Mailer
	from   string
}

// NewMailWelcomer constructs a MailWelcomer. An empty from uses the mailer's default sender.
func NewMailWelcomer(mailer mail.Mailer, from string) (*MailWelcomer, error) {
	if mailer == nil {
		return nil, errors.New("welcome mailer: mailer is required")
	}
	return &MailWelcomer{mailer: mailer, from: strings.TrimSpace(from)}, nil
}

// SendWelcome implements Welcomer.
func (w *MailWelcomer) SendWelcome(ctx context.Context, profile models.Profile) error {
	msg := WelcomeMessage(profile)
	msg.From = w.from
	if err := w.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("welcome mailer: %w", err)
	}
	return nil
}

// WelcomeMessage renders the welcome email for profile.
func WelcomeMessage(profile models.Profile) mail.Message {
	greeting := strings.TrimSpace(profile.DisplayName())
	if greeting == "" {
		greeting = "there"
	}

	text := strings.Join([]string{
		"Welcome to IndiePitcher!",
		"",
		fmt.Sprintf("Hi %s,", greeting),
		"Thank you for signing up for IndiePitcher! We're excited to have you on board.",
		"If you have any questions or need assistance, feel free to reach out to us.",
		"",
		"Best,",
		"The IndiePitcher Team",
	}, "\n")

	htmlBody := fmt.Sprintf(
		"<h1>Welcome to IndiePitcher!</h1>"+
			"<p>Hi %s,</p>"+
			"<p>Thank you for signing up for IndiePitcher! We're excited to have you on board.</p>"+
			"<p>If you have any questions or need assistance, feel free to reach out to us.</p>"+
			"<p>Best,<br>The IndiePitcher Team</p>",
		html.EscapeString(greeting),
	)

	return mail.Message{
		To:       []string{profile.Email},
		Subject:  WelcomeSubject,
		Body:     text,
		HTMLBody: htmlBody,
	}
}
