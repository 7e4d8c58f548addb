// Package audio implements the cache-or-compute path for synthesized post
// narration. The cache key is derived from the slug alone — audio/{slug}.mp3
// — so re-requesting a slug always resolves to the same artifact. Changing
// the text without changing the slug returns the stale cached audio; that is
// the documented contract, not a bug.
package audio

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"

	"uk.co.dudmesh.pressroom/internal/model"
)

const contentType = "audio/mpeg"

type Cache interface {
	Exists(key string) (string, bool, error)
	Put(key string, data []byte, contentType string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type service struct {
	cache Cache // nil when no blob backend is configured
	tts   Synthesizer
	group singleflight.Group
}

func New(cache Cache, tts Synthesizer) *service {
	return &service{cache: cache, tts: tts}
}

// CacheKey is the deterministic blob path for a slug.
func CacheKey(slug string) string {
	return fmt.Sprintf("audio/%s.mp3", slug)
}

// Narrate returns cached audio for the slug, or synthesizes, stores and
// returns it. Concurrent requests for the same slug share one upstream
// call. Cache failures are soft: a lookup error is treated as a miss, and
// a store error degrades to returning the raw bytes.
func (s *service) Narrate(ctx context.Context, text, slug string) (*model.AudioResult, error) {
	key := CacheKey(slug)

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if s.cache != nil {
			url, ok, err := s.cache.Exists(key)
			if err != nil {
				log.Warnf("audio: cache lookup for %s: %v", key, err)
			} else if ok {
				return &model.AudioResult{URL: url, Cached: true}, nil
			}
		}

		audio, err := s.tts.Synthesize(ctx, text)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			url, err := s.cache.Put(key, audio, contentType)
			if err != nil {
				log.Warnf("audio: cache store for %s: %v", key, err)
			} else {
				return &model.AudioResult{URL: url, Cached: true}, nil
			}
		}

		// Degraded path: no cache, or the store failed. The caller still
		// gets playable audio.
		return &model.AudioResult{Audio: audio}, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.AudioResult), nil
}
