package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"uk.co.dudmesh.pressroom/internal/model"
)

type fakeCache struct {
	objects   map[string][]byte
	putErr    error
	existsErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{objects: map[string][]byte{}}
}

func (f *fakeCache) Exists(key string) (string, bool, error) {
	if f.existsErr != nil {
		return "", false, f.existsErr
	}
	if _, ok := f.objects[key]; ok {
		return "https://cdn.example.com/" + key, true, nil
	}
	return "", false, nil
}

func (f *fakeCache) Put(key string, data []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

type fakeTTS struct {
	calls int32
	err   error
	gate  chan struct{}
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

func TestCacheKey(t *testing.T) {
	assert := assert.New(t)
	// Slug is the cache key, not content: two different texts for the same
	// slug resolve to the same path.
	assert.Equal("audio/my-post.mp3", CacheKey("my-post"))
	assert.Equal(CacheKey("my-post"), CacheKey("my-post"))
}

func TestNarrate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("Miss Then Hit", func(t *testing.T) {
		cache := newFakeCache()
		tts := &fakeTTS{}
		service := New(cache, tts)

		first, err := service.Narrate(ctx, "hello world", "my-post")
		assert.Nil(err)
		assert.True(first.Cached)
		assert.Equal("https://cdn.example.com/audio/my-post.mp3", first.URL)

		second, err := service.Narrate(ctx, "hello world", "my-post")
		assert.Nil(err)
		assert.True(second.Cached)
		assert.Equal(int32(1), atomic.LoadInt32(&tts.calls))
	})

	t.Run("Stale Text Same Slug", func(t *testing.T) {
		cache := newFakeCache()
		tts := &fakeTTS{}
		service := New(cache, tts)

		_, err := service.Narrate(ctx, "original", "stale-post")
		assert.Nil(err)
		_, err = service.Narrate(ctx, "rewritten", "stale-post")
		assert.Nil(err)
		// Second request served the stale artifact; no second synthesis.
		assert.Equal(int32(1), atomic.LoadInt32(&tts.calls))
		assert.Equal([]byte("mp3:original"), cache.objects["audio/stale-post.mp3"])
	})

	t.Run("Store Failure Falls Back To Bytes", func(t *testing.T) {
		cache := newFakeCache()
		cache.putErr = errors.New("blob token expired")
		service := New(cache, &fakeTTS{})

		result, err := service.Narrate(ctx, "hello", "degraded")
		assert.Nil(err)
		assert.Empty(result.URL)
		assert.False(result.Cached)
		assert.Equal([]byte("mp3:hello"), result.Audio)
	})

	t.Run("Lookup Failure Treated As Miss", func(t *testing.T) {
		cache := newFakeCache()
		cache.existsErr = errors.New("cdn unreachable")
		service := New(cache, &fakeTTS{})

		result, err := service.Narrate(ctx, "hello", "soft-fail")
		assert.Nil(err)
		assert.True(result.Cached)
		assert.NotEmpty(result.URL)
	})

	t.Run("No Cache Configured", func(t *testing.T) {
		service := New(nil, &fakeTTS{})

		result, err := service.Narrate(ctx, "hello", "no-cache")
		assert.Nil(err)
		assert.Empty(result.URL)
		assert.Equal([]byte("mp3:hello"), result.Audio)
	})

	t.Run("TTS Error Surfaces", func(t *testing.T) {
		service := New(newFakeCache(), &fakeTTS{err: model.ErrorTTSNotConfigured})

		_, err := service.Narrate(ctx, "hello", "unconfigured")
		assert.ErrorIs(err, model.ErrorTTSNotConfigured)
	})
}

func TestNarrateSingleFlight(t *testing.T) {
	assert := assert.New(t)

	cache := newFakeCache()
	tts := &fakeTTS{gate: make(chan struct{})}
	service := New(cache, tts)

	var started, wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		started.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			result, err := service.Narrate(context.Background(), "concurrent", "busy-post")
			assert.Nil(err)
			assert.NotNil(result)
		}()
	}

	// Let the goroutines pile up on the in-flight call, then release it.
	started.Wait()
	for atomic.LoadInt32(&tts.calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(tts.gate)
	wg.Wait()

	assert.Equal(int32(1), atomic.LoadInt32(&tts.calls))
}
