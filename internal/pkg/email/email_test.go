package email

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestSendVerificationCode_NoCredentialsLogsInstead(t *testing.T) {
	var buf strings.Builder
	svc := NewEmailService(SMTPConfig{Host: "localhost", Port: 25}, zerolog.New(&buf))

	err := svc.SendVerificationCode("jdoe@aggies.ncat.edu", "J Doe", "123456", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")
	assert.Contains(t, buf.String(), "jdoe@aggies.ncat.edu")
}

func TestBuildMessage_HeaderOrder(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "Aggie Review", FromEmail: "no-reply@aggiereview.app"}}
	msg := svc.buildMessage("jdoe@aggies.ncat.edu", "Hi", "<p>body</p>")

	assert.True(t, strings.HasPrefix(msg, "From: Aggie Review <no-reply@aggiereview.app>\r\nTo: jdoe@aggies.ncat.edu\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>"))
}
