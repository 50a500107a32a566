package shared

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("fetched snapshot", "country", "US")

		if !strings.Contains(buf.String(), "fetched snapshot") {
			t.Errorf("expected message in output, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "country=US") {
			t.Errorf("expected key/value in output, got %q", buf.String())
		}
	})

	t.Run("child logger carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		child := WithLogger(NewLogger(&buf), "run", "abc")
		child.Warn("task skipped")

		if !strings.Contains(buf.String(), "run=abc") {
			t.Errorf("expected child field in output, got %q", buf.String())
		}
	})

	t.Run("task logger carries country and date", func(t *testing.T) {
		var buf bytes.Buffer
		task := models.FetchTask{Country: "FR", Date: time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)}
		TaskLogger(NewLogger(&buf), task).Warn("snapshot failed")

		for _, want := range []string{"country=FR", "date=2021-01-15"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in output, got %q", want, buf.String())
			}
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tests := []struct {
			in   string
			want log.Level
			ok   bool
		}{
			{"", log.InfoLevel, true},
			{"debug", log.DebugLevel, true},
			{" Error ", log.ErrorLevel, true},
			{"loud", log.InfoLevel, false},
		}
		for _, tt := range tests {
			got, err := ParseLogLevel(tt.in)
			if (err == nil) != tt.ok {
				t.Errorf("ParseLogLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected valid uuid, got %q: %v", a, err)
	}
}
