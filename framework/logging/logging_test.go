package logging_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ty-larkin/illumine/framework/logging"
)

func TestNew_LevelNames(t *testing.T) {
	cases := []struct {
		name string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"trace", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
		{"  warn  ", logrus.WarnLevel},
	}
	for _, tc := range cases {
		log := logging.New(logging.Options{Level: tc.name})
		assert.Equal(t, tc.want, log.GetLevel(), "level %q", tc.name)
	}
}

func TestNew_TextFormatterByDefault(t *testing.T) {
	log := logging.New(logging.Options{})
	f, ok := log.Formatter.(*logrus.TextFormatter)
	require.True(t, ok, "formatter is %T", log.Formatter)
	assert.True(t, f.FullTimestamp)
}

func TestNew_JSONFormatter(t *testing.T) {
	log := logging.New(logging.Options{JSON: true})
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "formatter is %T", log.Formatter)
}

func TestNew_WritesToGivenOutput(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Options{Out: &buf})

	log.Info("server started")
	assert.Contains(t, buf.String(), "server started")
}

func TestNew_JSONOutputIsStructured(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Options{Out: &buf, JSON: true})

	log.WithField("port", "8000").Info("server started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "8000", entry["port"])
}

func TestChannel_StampsEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Options{Out: &buf, JSON: true})

	logging.Channel(log, "bus").Info("dispatched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bus", entry["channel"])
}

func TestDiscard_DropsEverything(t *testing.T) {
	log := logging.Discard()
	assert.Equal(t, io.Discard, log.Out)

	// Must be safe to log through without any setup.
	log.WithField("k", "v").Info("ignored")
}
