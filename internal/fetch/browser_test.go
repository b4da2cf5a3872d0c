package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBrowserOptions(t *testing.T) {
	opts := DefaultBrowserOptions()
	assert.Equal(t, 20*time.Second, opts.NavTimeout)
	assert.Equal(t, 1500*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, DefaultNetworkIdle, opts.NetworkIdle)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
}

func TestWaitNetworkIdle_ReturnsOnEvent(t *testing.T) {
	idle := make(chan struct{}, 1)
	idle <- struct{}{}

	start := time.Now()
	waitNetworkIdle(context.Background(), idle, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitNetworkIdle_BoundedWait(t *testing.T) {
	start := time.Now()
	waitNetworkIdle(context.Background(), make(chan struct{}), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitNetworkIdle_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	waitNetworkIdle(ctx, make(chan struct{}), time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBrowserSession_CloseIdempotent(t *testing.T) {
	closed := 0
	s := &BrowserSession{
		browserCancel: func() { closed++ },
		allocCancel:   func() { closed++ },
	}

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 2, closed)
}
