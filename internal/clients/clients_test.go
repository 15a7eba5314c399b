package clients

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func TestResultKey(t *testing.T) {
	assert.Equal(t, "sentiment:analysis:abc", ResultKey("abc"))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("read: i/o timeout")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}

// countingClient only tracks Close; the embedded interface is never called.
type countingClient struct {
	valkey.Client
	closed atomic.Int32
}

func (c *countingClient) Close() { c.closed.Add(1) }

func TestRecreateClientSwapsUnderConcurrentUse(t *testing.T) {
	first := &countingClient{}
	var mu sync.Mutex
	dialed := []*countingClient{}

	vc := &ValkeyClient{
		client: first,
		dial: func(context.Context, config.StoreSettings) (valkey.Client, error) {
			c := &countingClient{}
			mu.Lock()
			dialed = append(dialed, c)
			mu.Unlock()
			return c, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			vc.recreateClient(context.Background())
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NotNil(t, vc.current())
			}
		}()
	}
	wg.Wait()

	require.Len(t, dialed, 8)
	assert.Equal(t, int32(1), first.closed.Load())
	live := 0
	for _, c := range dialed {
		switch c.closed.Load() {
		case 0:
			live++
			assert.Same(t, c, vc.current())
		case 1:
		default:
			t.Fatalf("client closed %d times", c.closed.Load())
		}
	}
	assert.Equal(t, 1, live)
}

func TestRecreateClientKeepsClientWhenDialFails(t *testing.T) {
	old := &countingClient{}
	vc := &ValkeyClient{
		client: old,
		dial: func(context.Context, config.StoreSettings) (valkey.Client, error) {
			return nil, errors.New("connection refused")
		},
	}

	vc.recreateClient(context.Background())
	assert.Same(t, old, vc.current())
	assert.Zero(t, old.closed.Load())
}
