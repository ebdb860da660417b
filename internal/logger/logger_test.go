package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // Disable colors for easier testing
	mu.Unlock()
	reconfigure()

	return buf, func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
}

func TestSetLevel(t *testing.T) {
	buf, restore := captureOutput()
	defer restore()

	SetLevel("WARN")
	defer SetLevel("INFO")

	Info("should be suppressed")
	Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "should appear")
}

func TestJSONFormat(t *testing.T) {
	buf, restore := captureOutput()
	defer restore()

	SetFormat("json")
	defer SetFormat("text")

	Info("structured message", KeyUsername, "alice", KeyOutcome, "granted")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "structured message", record["msg"])
	assert.Equal(t, "alice", record[KeyUsername])
	assert.Equal(t, "granted", record[KeyOutcome])
}

func TestLogContextInjectsFields(t *testing.T) {
	buf, restore := captureOutput()
	defer restore()

	lc := &LogContext{
		RequestID:  "req-1234",
		Surface:    "share",
		ShareToken: "abcdef01...",
		ClientIP:   "192.168.1.100",
	}
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "gate decision", KeyOutcome, "denied_locked")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1234")
	assert.Contains(t, out, "surface=share")
	assert.Contains(t, out, "share_token=abcdef01...")
	assert.Contains(t, out, "client_ip=192.168.1.100")
	assert.Contains(t, out, "outcome=denied_locked")
}

func TestContextWithoutLogContext(t *testing.T) {
	buf, restore := captureOutput()
	defer restore()

	InfoCtx(context.Background(), "plain message")
	assert.Contains(t, buf.String(), "plain message")
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("10.0.0.1")
	lc2 := lc.WithSurface("login").WithUsername("bob")

	assert.Equal(t, "login", lc2.Surface)
	assert.Equal(t, "bob", lc2.Username)
	// Original unchanged
	assert.Equal(t, "", lc.Surface)
	assert.Equal(t, "", lc.Username)

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.Clone())
}

func TestShareTokenMasking(t *testing.T) {
	attr := ShareToken("0123456789abcdef")
	assert.Equal(t, KeyShareToken, attr.Key)
	assert.Equal(t, "01234567...", attr.Value.String())
	assert.False(t, strings.Contains(attr.Value.String(), "89abcdef"))

	short := ShareToken("abc")
	assert.Equal(t, "abc", short.Value.String())
}
