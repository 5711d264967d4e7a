package logger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNewRotationWriterSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.log")
	w, err := NewRotationWriter(&RotationConfig{Type: RotationBySize, MaxSize: 1, MaxBackups: 2}, path)
	require.NoError(t, err)

	lj, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, lj.Filename)
	assert.Equal(t, 1, lj.MaxSize)
}

func TestNewRotationWriterTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.log")
	w, err := NewRotationWriter(&RotationConfig{
		Type:         RotationByTime,
		RotationTime: time.Hour,
		MaxAgeTime:   24 * time.Hour,
	}, path)
	require.NoError(t, err)

	n, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.log")
	l, err := New(&Config{EnableFile: true, OutputPath: path})
	require.NoError(t, err)

	l.Info("to file")
	_ = l.Sync()
	assert.FileExists(t, path)
}
