package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"uk.co.dudmesh.pressroom/internal/model"
)

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(path string) (*ContentStore, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &ContentStore{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *ContentStore) Close() error {
	return s.db.Close()
}

func (s *ContentStore) createTables() error {
	_, err := s.db.Exec(`create table if not exists posts(
		id           text not null primary key,
		slug         text not null unique,
		title        text not null,
		published    boolean not null default false,
		published_at DATETIME null,
		created_at   DATETIME not null,
		updated_at   DATETIME not null
	)`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists email_queue(
		id            text not null primary key,
		post_id       text not null references posts(id),
		status        text not null default 'pending',
		scheduled_for DATETIME not null,
		error_message text null,
		created_at    DATETIME not null,
		updated_at    DATETIME not null
	)`)
	if err != nil {
		return fmt.Errorf("creating email_queue table: %w", err)
	}

	return nil
}

func (s *ContentStore) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = model.CreateID()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := s.db.NamedExecContext(ctx, `insert into posts
		(id, slug, title, published, published_at, created_at, updated_at)
		values(:id, :slug, :title, :published, :published_at, :created_at, :updated_at)`, post)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	if rows, err := res.RowsAffected(); rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	} else if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	return nil
}

func (s *ContentStore) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := s.db.GetContext(ctx, post, `select * from posts where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorPostNotFound
		}
		return nil, fmt.Errorf("fetching post: %w", err)
	}
	return post, nil
}

// DuePosts returns every post whose publish time has passed but which is
// still unpublished. Eligibility is exactly: published = false, a non-null
// published_at, and published_at <= now. No page limit — the sweep is
// expected to drain everything due.
func (s *ContentStore) DuePosts(ctx context.Context, now time.Time) ([]*model.Post, error) {
	// Rows are written in UTC and sqlite compares timestamps textually, so
	// the bound instant must be UTC too or the comparison crosses offsets.
	now = now.UTC()
	query, args, err := sq.Select("*").
		From("posts").
		Where(sq.Eq{"published": false}).
		Where(sq.NotEq{"published_at": nil}).
		Where(sq.LtOrEq{"published_at": now}).
		OrderBy("published_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building due posts query: %w", err)
	}

	posts := []*model.Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("selecting due posts: %w", err)
	}
	return posts, nil
}

// PublishPost flips a single post to published. Each post is updated
// independently — there is no transaction across the sweep batch.
func (s *ContentStore) PublishPost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update posts set published = true, updated_at = ? where id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("publishing post: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorPostNotFound
	}
	return nil
}

func (s *ContentStore) EnqueueEmail(ctx context.Context, item *model.EmailQueueItem) error {
	if item.ID == "" {
		item.ID = model.CreateID()
	}
	if item.Status == "" {
		item.Status = model.QueueStatusPending
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `insert into email_queue
		(id, post_id, status, scheduled_for, error_message, created_at, updated_at)
		values(:id, :post_id, :status, :scheduled_for, :error_message, :created_at, :updated_at)`, item)
	if err != nil {
		return fmt.Errorf("inserting queue item: %w", err)
	}
	return nil
}

func (s *ContentStore) FetchQueueItem(ctx context.Context, id string) (*model.EmailQueueItem, error) {
	item := &model.EmailQueueItem{}
	err := s.db.GetContext(ctx, item, `select * from email_queue where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorQueueItemNotFound
		}
		return nil, fmt.Errorf("fetching queue item: %w", err)
	}
	return item, nil
}

// DueQueueItems returns at most limit pending items whose scheduled time has
// passed, oldest first.
func (s *ContentStore) DueQueueItems(ctx context.Context, now time.Time, limit int) ([]*model.EmailQueueItem, error) {
	now = now.UTC()
	query, args, err := sq.Select("*").
		From("email_queue").
		Where(sq.Eq{"status": model.QueueStatusPending}).
		Where(sq.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for asc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building due queue query: %w", err)
	}

	items := []*model.EmailQueueItem{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("selecting due queue items: %w", err)
	}
	return items, nil
}

// ClaimQueueItem marks an item sending, but only if it is still pending.
// The conditional update makes the claim a compare-and-swap rather than a
// blind write, so two overlapping drains cannot both win the same item.
// Returns ErrorAlreadyClaimed when the row was no longer pending.
func (s *ContentStore) ClaimQueueItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update email_queue set status = ?, updated_at = ? where id = ? and status = ?`,
		model.QueueStatusSending, time.Now().UTC(), id, model.QueueStatusPending)
	if err != nil {
		return fmt.Errorf("claiming queue item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorAlreadyClaimed
	}
	return nil
}

func (s *ContentStore) FailQueueItem(ctx context.Context, id string, message string) error {
	_, err := s.db.ExecContext(ctx,
		`update email_queue set status = ?, error_message = ?, updated_at = ? where id = ?`,
		model.QueueStatusFailed, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failing queue item: %w", err)
	}
	return nil
}

// ReclaimStuck returns items stranded in sending for longer than olderThan
// back to pending, recording the reclaim in error_message. A zero olderThan
// disables reclaiming entirely.
func (s *ContentStore) ReclaimStuck(ctx context.Context, now time.Time, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	now = now.UTC()
	cutoff := now.Add(-olderThan)
	res, err := s.db.ExecContext(ctx,
		`update email_queue set status = ?,
		 error_message = coalesce(error_message || '; ', '') || ?,
		 updated_at = ?
		 where status = ? and updated_at <= ?`,
		model.QueueStatusPending, "reclaimed after stuck in sending", now,
		model.QueueStatusSending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reclaiming stuck queue items: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return int(rows), nil
}
