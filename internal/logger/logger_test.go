package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	// Must not panic before Init.
	l.Log.Info("noop")
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "info level", level: "Info"},
		{name: "debug level", level: "Debug"},
		{name: "bogus level", level: "Verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			err := l.Init(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l.Log)
		})
	}
}
