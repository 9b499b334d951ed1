package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRawPlainText(t *testing.T) {
	m := To("rosa@example.com").
		Subject("Otp for Email Verification").
		Text("Your Otp is : 4821QK").
		UseConfig(SMTP{From: "shop@example.com", FromName: "Planty"})

	raw := string(m.buildRaw())
	assert.Contains(t, raw, "From: Planty <shop@example.com>\r\n")
	assert.Contains(t, raw, "To: rosa@example.com\r\n")
	assert.Contains(t, raw, "Subject: Otp for Email Verification\r\n")
	assert.Contains(t, raw, `Content-Type: text/plain; charset="UTF-8"`)
	assert.True(t, len(raw) > 0 && raw[len(raw)-len("Your Otp is : 4821QK"):] == "Your Otp is : 4821QK")
}

func TestSendWithoutCredentialsFails(t *testing.T) {
	err := NewSMTP(SMTP{Host: "localhost", Port: "2525"}).Send(context.Background(), "a@b.co", "s", "b")
	assert.ErrorContains(t, err, "MAIL_USERNAME")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSMTP(SMTP{Username: "u"}).Send(ctx, "a@b.co", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), "a@b.co", "s", "b"))
}
