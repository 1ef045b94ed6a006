package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/ports"
)

var _ ports.DedupStore = (*Store)(nil)

var (
	runColumns      = []string{"id", "report_date", "created_at", "brief_path", "meta_json"}
	seenColumns     = []string{"item_key", "section", "title", "url", "source", "published_at", "first_seen_date", "last_seen_date"}
	runItemColumns  = []string{"run_id", "section", "title", "url", "source", "published_at", "item_key"}
	seenUpsertRule  = "ON CONFLICT (item_key) DO UPDATE SET last_seen_date = excluded.last_seen_date"
	runIDReturnRule = "RETURNING id"
)

// HasSeen reports whether the item's fingerprint was recorded by any earlier run.
func (s *Store) HasSeen(ctx context.Context, item domain.NewsItem) (bool, error) {
	query, args, err := s.sb.Select("COUNT(*)").
		From("seen_items").
		Where(sq.Eq{"item_key": item.Fingerprint()}).
		ToSql()
	if err != nil {
		return false, &StoreError{Op: "build has_seen", Err: err}
	}

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, &StoreError{Op: "query has_seen", Err: err}
	}
	return n > 0, nil
}

// CreateRun appends a run row and returns its id.
func (s *Store) CreateRun(ctx context.Context, reportDate, briefPath string, meta domain.RunMeta) (int64, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return 0, &StoreError{Op: "encode run meta", Err: err}
	}

	query, args, err := s.sb.Insert("runs").
		Columns("report_date", "created_at", "brief_path", "meta_json").
		Values(reportDate, s.now().UTC().Format(time.RFC3339), briefPath, string(raw)).
		Suffix(runIDReturnRule).
		ToSql()
	if err != nil {
		return 0, &StoreError{Op: "build create_run", Err: err}
	}

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, &StoreError{Op: "insert run", Err: err}
	}
	return id, nil
}

// RecordItem marks the item as seen and links it to the run in one transaction.
// On a repeat sighting only last_seen_date moves; the first-seen snapshot is kept.
func (s *Store) RecordItem(ctx context.Context, runID int64, reportDate string, item domain.NewsItem) error {
	key := item.Fingerprint()
	published := formatTimestamp(item.PublishedAt)

	upsert, upsertArgs, err := s.sb.Insert("seen_items").
		Columns(seenColumns...).
		Values(key, string(item.Section), item.Title, item.URL, item.Source, published, reportDate, reportDate).
		Suffix(seenUpsertRule).
		ToSql()
	if err != nil {
		return &StoreError{Op: "build seen upsert", Err: err}
	}
	link, linkArgs, err := s.sb.Insert("run_items").
		Columns(runItemColumns...).
		Values(runID, string(item.Section), item.Title, item.URL, item.Source, published, key).
		ToSql()
	if err != nil {
		return &StoreError{Op: "build run item insert", Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "begin record_item", Err: err}
	}
	if _, err := tx.ExecContext(ctx, upsert, upsertArgs...); err != nil {
		_ = tx.Rollback()
		return &StoreError{Op: "upsert seen item", Err: err}
	}
	if _, err := tx.ExecContext(ctx, link, linkArgs...); err != nil {
		_ = tx.Rollback()
		return &StoreError{Op: "insert run item", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "commit record_item", Err: err}
	}
	return nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id int64) (domain.Run, error) {
	query, args, err := s.sb.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Run{}, &StoreError{Op: "build get_run", Err: err}
	}

	var run domain.Run
	if err := s.db.GetContext(ctx, &run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errNotFound
		}
		return domain.Run{}, &StoreError{Op: "get run", Err: err}
	}
	return run, nil
}

// RecentRuns lists the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	query, args, err := s.sb.Select(runColumns...).From("runs").OrderBy("id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, &StoreError{Op: "build recent_runs", Err: err}
	}

	runs := make([]domain.Run, 0, limit)
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, &StoreError{Op: "list runs", Err: err}
	}
	return runs, nil
}

// GetSeenItem loads the seen snapshot for a fingerprint.
func (s *Store) GetSeenItem(ctx context.Context, key string) (domain.SeenItem, error) {
	query, args, err := s.sb.Select(seenColumns...).From("seen_items").Where(sq.Eq{"item_key": key}).ToSql()
	if err != nil {
		return domain.SeenItem{}, &StoreError{Op: "build get_seen_item", Err: err}
	}

	var item domain.SeenItem
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errNotFound
		}
		return domain.SeenItem{}, &StoreError{Op: "get seen item", Err: err}
	}
	return item, nil
}

// ListRunItems returns the items recorded for a run in insertion order.
func (s *Store) ListRunItems(ctx context.Context, runID int64) ([]domain.RunItem, error) {
	query, args, err := s.sb.Select(runItemColumns...).
		From("run_items").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return nil, &StoreError{Op: "build list_run_items", Err: err}
	}

	items := make([]domain.RunItem, 0)
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, &StoreError{Op: "list run items", Err: err}
	}
	return items, nil
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
