package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConvertToZapLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zap.DebugLevel, false},
		{"info", zap.InfoLevel, false},
		{"", zap.InfoLevel, false},
		{"WARN", zap.WarnLevel, false},
		{"error", zap.ErrorLevel, false},
		{"verbose", zap.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConvertToZapLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	lg, err := New("debug", false)
	require.NoError(t, err)
	assert.True(t, lg.Core().Enabled(zap.DebugLevel))

	lg, err = New("warn", true)
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(zap.InfoLevel))

	_, err = New("loud", false)
	require.Error(t, err)
}
