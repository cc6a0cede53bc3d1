package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/fishpizzaria/internal/infra/context"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

//nolint:paralleltest
func TestTracingHandler(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "info",
		JSON:         true,
		OutputHandle: &buf,
	}, "test")

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithUserID(ctx, "user-1")

	logging.GetLogger("test.tracing").InfoContext(ctx, "hello")

	var record struct {
		Trace struct {
			ID string `json:"id"`
		} `json:"trace"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Logger string `json:"logger"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "trace-1", record.Trace.ID)
	assert.Equal(t, "user-1", record.User.ID)
	assert.Equal(t, "test.tracing", record.Logger)
}

//nolint:paralleltest
func TestTracingHandler_EmptyTraceID(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "info",
		JSON:         true,
		OutputHandle: &buf,
	}, "test")

	ctx := context_.WithTraceID(context.Background(), "")
	logging.GetLogger("test.tracing").InfoContext(ctx, "hello")

	assert.NotContains(t, buf.String(), `"trace"`)
}
