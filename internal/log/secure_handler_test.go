package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// logLine renders one record through a SecureHandler and returns the output.
func logLine(t *testing.T, attrs ...any) string {
	t.Helper()

	var buf bytes.Buffer
	handler := NewSecureHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := slog.New(handler)

	logger.Info("test message", attrs...)
	return buf.String()
}

// TestSecureHandlerRedactsKeys tests redaction by attribute key.
func TestSecureHandlerRedactsKeys(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"password key", "password", "hunter2"},
		{"control_password key", "control_password", "hunter2"},
		{"mixed case key", "Password", "hunter2"},
		{"token key", "token", "abc123"},
		{"cookie key", "cookie", "session=xyz"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := logLine(t, slog.String(tc.key, tc.value))
			if strings.Contains(out, tc.value) {
				t.Errorf("output %q leaks value %q", out, tc.value)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("output %q missing mask", out)
			}
		})
	}
}

// TestSecureHandlerRedactsValues tests redaction by value pattern.
func TestSecureHandlerRedactsValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value string
	}{
		{"authenticate command", `authenticate "hunter2"`},
		{"hashed control password", "16:872860B76453A77D60CA2BB8C1A7042072093276A3D701AD684053EC4C"},
		{"bearer token", "Bearer eyJabc.def.ghi"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := logLine(t, slog.String("detail", tc.value))
			if strings.Contains(out, tc.value) {
				t.Errorf("output %q leaks value %q", out, tc.value)
			}
		})
	}
}

// TestSecureHandlerPassesBenignAttrs verifies ordinary attributes survive.
func TestSecureHandlerPassesBenignAttrs(t *testing.T) {
	t.Parallel()

	out := logLine(t, slog.String("addr", "localhost:9051"), slog.Int("commands", 3))
	if !strings.Contains(out, "localhost:9051") {
		t.Errorf("output %q lost benign attribute", out)
	}
	if strings.Contains(out, MaskValue) {
		t.Errorf("output %q masked a benign attribute", out)
	}
}

// TestSecureHandlerGroups verifies redaction recurses into groups.
func TestSecureHandlerGroups(t *testing.T) {
	t.Parallel()

	out := logLine(t, slog.Group("control",
		slog.String("host", "localhost"),
		slog.String("password", "hunter2"),
	))
	if strings.Contains(out, "hunter2") {
		t.Errorf("output %q leaks grouped password", out)
	}
	if !strings.Contains(out, "localhost") {
		t.Errorf("output %q lost benign grouped attribute", out)
	}
}

// TestNewLogger tests the level selection of the torctl logger factory.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("visible")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info record logged at default level")
		}
		if !strings.Contains(buf.String(), "visible") {
			t.Error("warn record missing at default level")
		}
	})

	t.Run("verbose level includes debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("dbg")

		if !strings.Contains(buf.String(), "dbg") {
			t.Error("debug record missing at verbose level")
		}
	})
}
