package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConServicioYNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "WARN", Service: "logistica-api", Out: &buf})

	l.Info().Msg("descartado")
	l.Warn().Int("attempt", 2).Msg("reintento")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "info queda por debajo del nivel")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "logistica-api", entry["service"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "reintento", entry["message"])
	assert.EqualValues(t, 2, entry["attempt"])
}

func TestNew_SinServicioNoAgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Env: "production", Out: &buf}).Info().Msg("hola")
	assert.NotContains(t, buf.String(), `"service"`)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"raro":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
