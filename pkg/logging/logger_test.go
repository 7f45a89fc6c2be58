package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// quiet restores a discarding logger once a test is done.
func quiet(t *testing.T) {
	t.Cleanup(func() {
		Setup(Config{Level: LevelInfo, Output: &bytes.Buffer{}})
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   LogLevel
		want zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LevelDisabled, zerolog.Disabled},
		{"off", zerolog.Disabled},
		{" WARNING ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_LevelGate(t *testing.T) {
	quiet(t)

	// emitted lists, per configured level, which of debug/info/warn/error pass.
	tests := []struct {
		level   LogLevel
		emitted [4]bool
	}{
		{LevelDebug, [4]bool{true, true, true, true}},
		{LevelInfo, [4]bool{false, true, true, true}},
		{LevelWarn, [4]bool{false, false, true, true}},
		{LevelError, [4]bool{false, false, false, true}},
		{LevelDisabled, [4]bool{false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: tt.level, Output: buf})

			logger := NewLogger(ComponentEgress)
			logger.Debug().Msg("attempt")
			logger.Info().Msg("configured")
			logger.Warn().Msg("rotating")
			logger.Error().Msg("exhausted")

			out := buf.String()
			for i, msg := range []string{"attempt", "configured", "rotating", "exhausted"} {
				if got := strings.Contains(out, `"message":"`+msg+`"`); got != tt.emitted[i] {
					t.Errorf("%q emitted = %v, want %v", msg, got, tt.emitted[i])
				}
			}
		})
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	quiet(t)

	components := []string{
		ComponentEgress,
		ComponentClient,
		ComponentRoblox,
		ComponentPagination,
		ComponentCooldown,
		ComponentGateway,
	}

	for _, component := range components {
		buf := &bytes.Buffer{}
		Setup(Config{Level: LevelInfo, Output: buf})

		logger := NewLogger(component)
		logger.Info().Str("egress", "direct").Msg("hello")

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("%s: output is not one JSON line: %v (%q)", component, err, buf.String())
		}
		if line["component"] != component {
			t.Errorf("component = %v, want %q", line["component"], component)
		}
		if line["egress"] != "direct" {
			t.Errorf("%s: egress field = %v", component, line["egress"])
		}
		if _, ok := line["time"]; !ok {
			t.Errorf("%s: missing timestamp", component)
		}
	}
}

func TestSetup_Pretty(t *testing.T) {
	quiet(t)

	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	logger := NewLogger(ComponentGateway)
	logger.Info().Msg("listening")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("pretty output is JSON: %q", out)
	}
	if !strings.Contains(out, "listening") {
		t.Errorf("pretty output missing message: %q", out)
	}
}

func TestSetup_NilOutputDefaultsToStderr(t *testing.T) {
	quiet(t)

	logger := Setup(Config{Level: LevelError})
	logger.Debug().Msg("filtered")

	if cfg := DefaultConfig(); cfg.Level != LevelInfo || cfg.Pretty || cfg.Output == nil {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}
