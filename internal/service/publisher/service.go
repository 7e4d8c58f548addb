// Package publisher runs the scheduled-posts sweep: find every unpublished
// post whose publish time has passed and flip it live.
package publisher

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.pressroom/internal/model"
)

type PostStore interface {
	DuePosts(ctx context.Context, now time.Time) ([]*model.Post, error)
	PublishPost(ctx context.Context, id string) error
}

type service struct {
	store PostStore
}

func New(store PostStore) *service {
	return &service{store: store}
}

// Sweep publishes every due post. A failure on one post is recorded and
// does not abort the rest of the batch. Re-running is safe: already
// published rows are excluded by the query, so a second sweep with no time
// passing publishes nothing.
func (s *service) Sweep(ctx context.Context, now time.Time) (*model.SweepReport, error) {
	posts, err := s.store.DuePosts(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &model.SweepReport{
		Checked:   len(posts),
		Published: []string{},
		Failed:    []model.SweepFailure{},
	}

	for _, post := range posts {
		if err := s.store.PublishPost(ctx, post.ID); err != nil {
			log.Warnf("sweep: publishing %q: %v", post.Title, err)
			report.Failed = append(report.Failed, model.SweepFailure{Title: post.Title, Error: err.Error()})
			continue
		}
		log.Infof("sweep: published %q", post.Title)
		report.Published = append(report.Published, post.Title)
	}

	return report, nil
}
