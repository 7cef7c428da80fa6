package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	if New(false).GetLevel() != zerolog.InfoLevel {
		t.Error("default logger should run at info level")
	}
	if New(true).GetLevel() != zerolog.DebugLevel {
		t.Error("verbose logger should run at debug level")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("account", "16").Msg("merged batch")

	out := buf.String()
	if !strings.Contains(out, "merged batch") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, `"account":"16"`) {
		t.Errorf("output missing structured field: %s", out)
	}
}

func TestNop(t *testing.T) {
	if Nop().GetLevel() != zerolog.Disabled {
		t.Error("nop logger should be disabled")
	}
}
