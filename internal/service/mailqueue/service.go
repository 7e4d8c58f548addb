// Package mailqueue drains the blog email queue: claim pending items one at
// a time, hand each to the external newsletter function, and record
// failures on the row.
package mailqueue

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.pressroom/internal/model"
)

type QueueStore interface {
	DueQueueItems(ctx context.Context, now time.Time, limit int) ([]*model.EmailQueueItem, error)
	ClaimQueueItem(ctx context.Context, id string) error
	FailQueueItem(ctx context.Context, id string, message string) error
	ReclaimStuck(ctx context.Context, now time.Time, olderThan time.Duration) (int, error)
}

type Sender interface {
	Send(ctx context.Context, postID, queueID string) error
}

type service struct {
	store        QueueStore
	sender       Sender
	batchSize    int
	reclaimAfter time.Duration
}

func New(store QueueStore, sender Sender, batchSize int, reclaimAfter time.Duration) *service {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &service{store: store, sender: sender, batchSize: batchSize, reclaimAfter: reclaimAfter}
}

// Drain processes at most one batch of due queue items, in sequence.
//
// The claim is a conditional pending->sending update, so an overlapping
// drain that loses the race skips the item. Dispatch is at-least-once: a
// crash between claim and send leaves the item in sending, which the
// reclaim pass returns to pending once it is older than reclaimAfter.
// On sender success the item is deliberately left in sending — the sender
// marks sent itself.
func (s *service) Drain(ctx context.Context, now time.Time) (int, error) {
	if reclaimed, err := s.store.ReclaimStuck(ctx, now, s.reclaimAfter); err != nil {
		log.Warnf("mailqueue: reclaim pass: %v", err)
	} else if reclaimed > 0 {
		log.Infof("mailqueue: reclaimed %d stuck items", reclaimed)
	}

	items, err := s.store.DueQueueItems(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, item := range items {
		processed++

		if err := s.store.ClaimQueueItem(ctx, item.ID); err != nil {
			log.Warnf("mailqueue: claiming %s: %v", item.ID, err)
			continue
		}

		if err := s.sender.Send(ctx, item.PostID, item.ID); err != nil {
			log.Errorf("mailqueue: sending %s: %v", item.ID, err)
			if err := s.store.FailQueueItem(ctx, item.ID, err.Error()); err != nil {
				log.Errorf("mailqueue: recording failure on %s: %v", item.ID, err)
			}
			continue
		}

		log.Infof("mailqueue: dispatched %s for post %s", item.ID, item.PostID)
	}

	return processed, nil
}
