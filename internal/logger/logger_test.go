package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", "json", &buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := Component("simulator")
	l.Info().Str("record", ShortID("0123456789abcdef")).Msg("tick")
	log.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"component":"simulator"`)
	assert.Contains(t, out, `"record":"01234567"`)
	assert.NotContains(t, out, "hidden")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("123456789"))
}
