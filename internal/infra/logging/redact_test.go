package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

//nolint:paralleltest
func TestRedaction(t *testing.T) {
	for _, json := range []bool{true, false} {
		var buf bytes.Buffer

		logging.Configure(context.Background(), logging.LoggerConfig{
			Level:        "debug",
			JSON:         json,
			OutputHandle: &buf,
		}, "test")

		log := logging.GetLogger("test.redact")
		log.Info("sign in",
			"token", "tok123",
			logging.Group("credentials", "email", "a@b.com", "password", "hunter2"),
		)

		out := buf.String()
		assert.NotContains(t, out, "tok123")
		assert.NotContains(t, out, "hunter2")
		assert.Contains(t, out, "[redacted]")
		assert.Contains(t, out, "a@b.com")
	}
}

func TestIsSensitive(t *testing.T) {
	t.Parallel()

	assert.True(t, logging.IsSensitive("Authorization"))
	assert.True(t, logging.IsSensitive("password"))
	assert.False(t, logging.IsSensitive("email"))
}

//nolint:paralleltest
func TestConsoleHandlerPackageFilter(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "debug",
		Filter:       "svc.websvc:warn",
		OutputHandle: &buf,
	}, "test")

	logging.GetLogger("svc.websvc.auth_session").Info("filtered out")
	logging.GetLogger("svc.authsvc").Info("kept")

	assert.NotContains(t, buf.String(), "filtered out")
	assert.Contains(t, buf.String(), "kept")
}
