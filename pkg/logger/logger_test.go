package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"ERROR", "error"},
		{"nonsense", "info"},
		{"", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			SetLevel(tt.in)
			assert.Equal(t, tt.want, Level().String())
		})
	}
}

func TestInitLoggerWithFile(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	InitLogger(Options{Level: "debug", File: filepath.Join(t.TempDir(), "app.log")})
	assert.True(t, Log.Core().Enabled(zap.DebugLevel))

	SetLevel("error")
	assert.False(t, Log.Core().Enabled(zap.InfoLevel))
	SetLevel("info")
}
