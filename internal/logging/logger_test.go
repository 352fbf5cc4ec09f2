package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/wrapfix/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"invalid", log.InfoLevel},
		{"", log.InfoLevel},
		{"DEBUG", log.DebugLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			t.Parallel()

			if got := logging.New(tc.level).GetLevel(); got != tc.expected {
				t.Errorf("New(%q) level = %v, want %v", tc.level, got, tc.expected)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithOptions(logging.Options{Writer: &buf, Format: logging.FormatJSON})
	logger.Info("file processed", logging.FieldPath, "WidgetTests.cs", logging.FieldOutcome, "rewritten")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output %q is not JSON: %v", buf.String(), err)
	}
	if record[logging.FieldPath] != "WidgetTests.cs" {
		t.Errorf("record = %v", record)
	}
}

func TestLogfmtFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithOptions(logging.Options{Writer: &buf, Format: logging.FormatLogfmt})
	logger.Warn("file failed", logging.FieldPath, "a.cs")

	if !strings.Contains(buf.String(), "path=a.cs") {
		t.Errorf("logfmt output = %q", buf.String())
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"", "text", "json", "LOGFMT"} {
		if err := logging.ValidateFormat(ok); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", ok, err)
		}
	}
	if err := logging.ValidateFormat("xml"); err == nil {
		t.Error("ValidateFormat(xml) succeeded")
	}
}

func TestSetDefaultAndLevel(t *testing.T) {
	// Not parallel: modifies the process-wide logger.
	original := logging.Default()
	defer logging.SetDefault(original)

	logger := logging.New("info")
	logging.SetDefault(logger)
	if logging.Default() != logger {
		t.Fatal("SetDefault did not change the default logger")
	}

	logging.SetLevel("debug")
	if logging.Default().GetLevel() != log.DebugLevel {
		t.Error("SetLevel to debug failed")
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %v", logger.GetLevel())
	}
	if logger.GetPrefix() != "wrapfix" {
		t.Errorf("prefix = %q", logger.GetPrefix())
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	logger := logging.New("error")
	ctx := logging.WithLogger(context.Background(), logger)
	if logging.FromContext(ctx) != logger {
		t.Error("FromContext did not return the attached logger")
	}
	if logging.FromContext(context.Background()) == nil {
		t.Error("FromContext without logger returned nil")
	}
}
