package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{"development", zerolog.DebugLevel},
		{"production", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			l := New(tt.env)
			require.Equal(t, tt.want, l.GetLevel())
			require.Equal(t, "severity", zerolog.LevelFieldName)
		})
	}
}
