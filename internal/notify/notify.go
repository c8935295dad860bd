// Package notify announces finished reports on the console, by email and via
// chat webhooks. Delivery failures are logged and never returned.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/config"
)

var now = time.Now

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// HTTPDoer executes HTTP requests; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithLogger(l zerolog.Logger) Option {
	return func(n *Notifier) {
		n.log = l
	}
}

// WithConsole redirects console notifications, os.Stdout by default.
func WithConsole(w io.Writer) Option {
	return func(n *Notifier) {
		n.console = w
	}
}

// WithEmail enables the email channel. Notify mails recipient; Send mails
// recipient or, when it is empty, the fallback set by WithScheduledRecipient.
func WithEmail(m Mailer, recipient string) Option {
	return func(n *Notifier) {
		n.mailer = m
		n.recipient = recipient
	}
}

// WithScheduledRecipient sets the address Send mails when no recipient is
// configured, usually the SMTP account itself.
func WithScheduledRecipient(to string) Option {
	return func(n *Notifier) {
		n.scheduledTo = to
	}
}

// WithWebhook enables the webhook channel.
func WithWebhook(url string, timeout time.Duration) Option {
	return func(n *Notifier) {
		n.webhookURL = url
		if timeout > 0 {
			n.webhookTimeout = timeout
		}
	}
}

func WithHTTPClient(c HTTPDoer) Option {
	return func(n *Notifier) {
		n.client = c
	}
}

// Notifier fans a message out to the configured channels.
type Notifier struct {
	log            zerolog.Logger
	console        io.Writer
	mailer         Mailer
	recipient      string
	scheduledTo    string
	webhookURL     string
	webhookTimeout time.Duration
	client         HTTPDoer
}

// New returns a console-only notifier extended by opts.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		log:            zerolog.Nop(),
		console:        os.Stdout,
		webhookTimeout: config.DefaultWebhookWait,
		client:         &http.Client{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FromConfig builds a notifier from the notify settings. Email is enabled
// when NOTIFY_EMAIL or the SMTP user is set; scheduled sends fall back to the
// SMTP user. The webhook is enabled when a URL is set.
func FromConfig(ctx context.Context, cfg config.NotifyConfig, log zerolog.Logger) (*Notifier, error) {
	opts := []Option{WithLogger(log)}
	if cfg.Email != "" || cfg.SMTP.User != "" {
		var m Mailer
		switch cfg.EmailTransport {
		case "ses":
			from := cfg.SES.From
			if from == "" {
				from = cfg.SMTP.User
			}
			sm, err := NewSESMailer(ctx, cfg.SES.Region, from)
			if err != nil {
				return nil, err
			}
			m = sm
		default:
			m = &SMTPMailer{
				Server:   cfg.SMTP.Server,
				Port:     cfg.SMTP.Port,
				User:     cfg.SMTP.User,
				Password: cfg.SMTP.Password,
			}
		}
		opts = append(opts, WithEmail(m, cfg.Email), WithScheduledRecipient(cfg.SMTP.User))
	}
	if cfg.WebhookURL != "" {
		opts = append(opts, WithWebhook(cfg.WebhookURL, cfg.WebhookTimeout))
	}
	return New(opts...), nil
}

// Notify announces that the report reportName is available at reportPath.
// Only NOTIFY_EMAIL is mailed.
func (n *Notifier) Notify(ctx context.Context, reportPath, reportName string) []string {
	msg := fmt.Sprintf("Report ready: %s at %s", reportName, reportPath)
	n.log.Info().Str("report", reportName).Str("path", reportPath).Msg(msg)
	return n.send(ctx, n.recipient, "[AutoPort] Report Ready: "+reportName, msg)
}

// Send delivers msg on every configured channel and returns one line per
// channel attempted. The console channel is always attempted.
func (n *Notifier) Send(ctx context.Context, subject, msg string) []string {
	to := n.recipient
	if to == "" {
		to = n.scheduledTo
	}
	return n.send(ctx, to, subject, msg)
}

func (n *Notifier) send(ctx context.Context, to, subject, msg string) []string {
	fmt.Fprintf(n.console, "[%s][console] %s\n", now().Format("2006-01-02 15:04:05"), msg)
	sent := []string{"console: " + msg}

	if n.mailer != nil && to != "" {
		if err := n.mailer.Send(ctx, to, subject, msg); err != nil {
			n.log.Error().Err(err).Str("to", to).Msg("failed to send email")
			sent = append(sent, "email: failed to send to "+to)
		} else {
			n.log.Info().Str("to", to).Msg("email sent")
			sent = append(sent, "email: sent to "+to)
		}
	}

	if n.webhookURL != "" {
		if err := n.postWebhook(ctx, msg); err != nil {
			n.log.Error().Err(err).Msg("failed to send webhook")
			sent = append(sent, "webhook: failed to send to "+n.webhookURL)
		} else {
			n.log.Info().Msg("webhook notification sent")
			sent = append(sent, "webhook: sent to "+n.webhookURL)
		}
	}
	return sent
}
