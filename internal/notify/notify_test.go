package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/autoport/internal/config"
)

type fakeMailer struct {
	to, subject, body string
	err               error
	calls             int
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func fixedNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func TestNotify_ConsoleOnly(t *testing.T) {
	fixedNow(t)
	var out bytes.Buffer
	n := New(WithConsole(&out))

	msgs := n.Notify(context.Background(), "reports/sample_report.html", "sample_report")

	assert.Equal(t, []string{"console: Report ready: sample_report at reports/sample_report.html"}, msgs)
	assert.Equal(t, "[2024-02-03 04:05:06][console] Report ready: sample_report at reports/sample_report.html\n", out.String())
}

func TestNotify_EmailAndWebhook(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	mailer := &fakeMailer{}
	n := New(WithConsole(io.Discard), WithEmail(mailer, "ops@example.com"), WithWebhook(srv.URL, time.Second))

	msgs := n.Notify(context.Background(), "r.html", "weekly")

	require.Len(t, msgs, 3)
	assert.Equal(t, "email: sent to ops@example.com", msgs[1])
	assert.Equal(t, "webhook: sent to "+srv.URL, msgs[2])
	assert.Equal(t, "[AutoPort] Report Ready: weekly", mailer.subject)
	assert.Equal(t, "Report ready: weekly at r.html", mailer.body)
	assert.Equal(t, map[string]string{"text": "Report ready: weekly at r.html"}, got)
}

func TestSend_FailuresAreAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mailer := &fakeMailer{err: errors.New("smtp down")}
	n := New(WithConsole(io.Discard), WithEmail(mailer, "a@b.c"), WithWebhook(srv.URL, time.Second), WithLogger(zerolog.Nop()))

	msgs := n.Send(context.Background(), "s", "m")
	assert.Equal(t, []string{
		"console: m",
		"email: failed to send to a@b.c",
		"webhook: failed to send to " + srv.URL,
	}, msgs)
	assert.Equal(t, 1, mailer.calls)
}

func TestSend_UnreachableWebhook(t *testing.T) {
	n := New(WithConsole(io.Discard), WithWebhook("http://127.0.0.1:1/hook", 200*time.Millisecond))
	msgs := n.Send(context.Background(), "s", "m")
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[1], "webhook: failed"))
}

func TestWebhookPayload(t *testing.T) {
	b, err := webhookPayload("https://discord.com/api/webhooks/1/abc", "hi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"hi"}`, string(b))

	b, err = webhookPayload("https://hooks.slack.com/services/T/B/X", "hi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(b))
}

func TestSMTPMailer_NoCredentials(t *testing.T) {
	m := &SMTPMailer{Server: "smtp.example.com", Port: 465}
	assert.ErrorIs(t, m.Send(context.Background(), "a@b.c", "s", "b"), ErrNoCredentials)

	n := New(WithConsole(io.Discard), WithEmail(m, "a@b.c"))
	assert.Equal(t, "email: failed to send to a@b.c", n.Send(context.Background(), "s", "b")[1])
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@x", "to@y", "Subj", "line1\nline2"))
	assert.True(t, strings.HasPrefix(msg, "From: from@x\r\nTo: to@y\r\nSubject: Subj\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2\r\n"))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESMailer(t *testing.T) {
	client := &fakeSES{}
	m := NewSESMailerWithClient(client, "reports@example.com")
	require.NoError(t, m.Send(context.Background(), "ops@example.com", "subject", "body"))

	require.NotNil(t, client.input)
	assert.Equal(t, "reports@example.com", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"ops@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "body", *client.input.Content.Simple.Body.Text.Data)

	assert.Error(t, NewSESMailerWithClient(client, "").Send(context.Background(), "x", "s", "b"))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Notify
	n, err := FromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, n.mailer)
	assert.Empty(t, n.webhookURL)

	cfg.Email = "ops@example.com"
	cfg.WebhookURL = "https://hooks.slack.com/x"
	n, err = FromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &SMTPMailer{}, n.mailer)
	assert.Equal(t, 465, n.mailer.(*SMTPMailer).Port)
	assert.Equal(t, "https://hooks.slack.com/x", n.webhookURL)
	assert.Equal(t, 10*time.Second, n.webhookTimeout)
}

func TestFromConfig_SMTPUserOnly(t *testing.T) {
	cfg := config.Default().Notify
	cfg.SMTP.User = "reports@example.com"
	cfg.SMTP.Password = "secret"

	n, err := FromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &SMTPMailer{}, n.mailer)

	mailer := &fakeMailer{}
	n.mailer = mailer
	n.console = io.Discard

	msgs := n.Send(context.Background(), "AutoPort Report: r", "[AutoPort] Scheduled report generated: r")
	assert.Equal(t, []string{
		"console: [AutoPort] Scheduled report generated: r",
		"email: sent to reports@example.com",
	}, msgs)
	assert.Equal(t, "reports@example.com", mailer.to)

	msgs = n.Notify(context.Background(), "r.html", "r")
	assert.Len(t, msgs, 1)
	assert.Equal(t, 1, mailer.calls)
}

func TestSend_PrefersNotifyEmail(t *testing.T) {
	mailer := &fakeMailer{}
	n := New(WithConsole(io.Discard), WithEmail(mailer, "ops@example.com"), WithScheduledRecipient("reports@example.com"))

	n.Send(context.Background(), "s", "m")
	assert.Equal(t, "ops@example.com", mailer.to)
}
