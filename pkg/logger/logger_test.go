package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	l, err := New(Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithField("book_id", 7).Debug("loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, float64(7), entry["book_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_DefaultsToInfoText(t *testing.T) {
	l, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "text formatter expected")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Error("dropped") })
}
