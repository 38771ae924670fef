package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("parse failure")))
	assert.True(t, IsTransient(NewTransientError(eris.New("http 503"), 503)))
	assert.True(t, IsTransient(eris.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(eris.Wrap(NewTransientError(eris.New("slow"), 429), "fetch")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 404} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond},
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", NewTransientError(eris.New("http 503"), 503)
			}
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond},
		func(context.Context) (int, error) {
			calls++
			return 0, eris.New("http 404")
		})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
		func(context.Context) (int, error) {
			calls++
			return 0, NewTransientError(eris.New("http 500"), 500)
		})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := Do(ctx, RetryConfig{MaxAttempts: 10, InitialBackoff: time.Hour},
			func(context.Context) (int, error) {
				calls++
				return 0, NewTransientError(eris.New("http 503"), 503)
			})
		assert.Error(t, err)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 1, calls)
}
