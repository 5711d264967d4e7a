package usb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usb_accessory")

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, Present(path))

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, Present(path))
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usb_accessory")

	w := NewWatcher(&Config{Device: path, SettleDelay: 10 * time.Millisecond}, nil)

	attached := make(chan string, 4)
	detached := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, Handler{
			Attached: func(p string) { attached <- p },
			Detached: func(p string) { detached <- p },
		})
	}()

	// 等待 watcher 就绪后再创建节点
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	select {
	case p := <-attached:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("attach not observed")
	}

	require.NoError(t, os.Remove(path))
	select {
	case p := <-detached:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("detach not observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherExistingDevice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usb_accessory")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	w := NewWatcher(&Config{Device: path}, nil)
	attached := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, Handler{Attached: func(p string) { attached <- p }}) }()

	select {
	case p := <-attached:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("existing device not reported")
	}
}
