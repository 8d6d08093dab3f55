package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_WritesJSONWithServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "anivault-test", Version: "v0.0.0-test"})

	L().Info().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "anivault-test", line["service"])
	assert.Equal(t, "v0.0.0-test", line["version"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestSetLevel_RejectsUnknownLevel(t *testing.T) {
	Configure(Config{})
	err := SetLevel("not-a-level")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestWithComponent_AnnotatesComponentField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	l := WithComponent("cache")
	l.Info().Msg("opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cache", line[FieldComponent])
}
