package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	f()

	return buf.String()
}

func TestSetVerbose(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("Expected verbose to be true")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("Expected verbose to be false")
	}
}

func TestDebugf_VerboseOff(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(false)

	out := captureOutput(t, func() {
		Debugf("test debug message")
	})

	if out != "" {
		t.Errorf("Expected no output when verbose is off, got: %s", out)
	}
}

func TestDebugf_VerboseOn(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(true)

	out := captureOutput(t, func() {
		Debugf("test debug message")
	})

	if !strings.Contains(out, "test debug message") {
		t.Errorf("Expected message content in output, got: %s", out)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		logFn func(string, ...interface{})
		level string
	}{
		{"info", Infof, "INFO"},
		{"warn", Warnf, "WARN"},
		{"error", Errorf, "ERRO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t, func() {
				tt.logFn("test %s message", tt.name)
			})

			if !strings.Contains(out, tt.level) {
				t.Errorf("Expected level %s in output, got: %s", tt.level, out)
			}
			if !strings.Contains(out, "test "+tt.name+" message") {
				t.Errorf("Expected message content in output, got: %s", out)
			}
		})
	}
}

func TestDisableLogs(t *testing.T) {
	DisableLogs()
	defer disableLogs.Store(false)

	if !IsDisabled() {
		t.Fatal("Expected logs to be disabled")
	}

	out := captureOutput(t, func() {
		Infof("should not appear")
		Errorf("should not appear either")
	})

	if out != "" {
		t.Errorf("Expected no output when logs are disabled, got: %s", out)
	}
}
