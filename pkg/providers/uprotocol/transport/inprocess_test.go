package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcess_InvokeRoutesToHandler(t *testing.T) {
	tr := NewInProcess(nil, func(_ context.Context, methodURI string, payload []byte) ([]byte, error) {
		assert.Equal(t, "//updater/BBC/1/1", methodURI)
		return append([]byte("echo:"), payload...), nil
	})
	defer tr.Close()

	resp, err := tr.Invoke(context.Background(), "//updater/BBC/1/1", time.Second, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(resp))
}

func TestInProcess_NilHandlerErrors(t *testing.T) {
	tr := NewInProcess(nil, nil)
	defer tr.Close()

	_, err := tr.Invoke(context.Background(), "//updater/BBC/1/1", time.Second, nil)
	assert.Error(t, err)
}

func TestInProcess_TimeoutWhenHandlerBlocks(t *testing.T) {
	block := make(chan struct{})
	tr := NewInProcess(nil, func(ctx context.Context, _ string, _ []byte) ([]byte, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil, ctx.Err()
	})
	defer func() { close(block); tr.Close() }()

	_, err := tr.Invoke(context.Background(), "//updater/BBC/1/1", 10*time.Millisecond, nil)
	assert.Error(t, err)
}
