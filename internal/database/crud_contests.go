// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cpsync/internal/models"
)

const contestColumns = `id, name, platform, start_time, duration_seconds, link, status, solutions, created_at, updated_at`

func scanContest(row rowScanner) (models.Contest, error) {
	var (
		c         models.Contest
		platform  string
		status    string
		seconds   int64
		solutions string
	)
	err := row.Scan(&c.ID, &c.Name, &platform, &c.StartTime, &seconds, &c.Link, &status, &solutions, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Contest{}, err
	}
	c.Platform = models.Platform(platform)
	c.Status = models.ContestStatus(status)
	c.Duration = time.Duration(seconds) * time.Second
	c.Solutions = []models.Solution{}
	if solutions != "" {
		if err := json.Unmarshal([]byte(solutions), &c.Solutions); err != nil {
			return models.Contest{}, fmt.Errorf("decode solutions of %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func encodeSolutions(s []models.Solution) (string, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode solutions: %w", err)
	}
	return string(data), nil
}

// GetContest returns the contest with the given id.
func (db *DB) GetContest(ctx context.Context, id string) (contest *models.Contest, err error) {
	start := time.Now()
	defer func() { observe("get", "contests", start, err) }()

	row := db.conn.QueryRowContext(ctx, "SELECT "+contestColumns+" FROM contests WHERE id = ?", id)
	c, err := scanContest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contest %s: %w", id, err)
	}
	return &c, nil
}

// InsertContest stores c unless a contest with the same id exists. It
// reports whether a row was written.
func (db *DB) InsertContest(ctx context.Context, c *models.Contest) (inserted bool, err error) {
	start := time.Now()
	defer func() { observe("insert", "contests", start, err) }()

	solutions, err := encodeSolutions(c.Solutions)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx, `INSERT INTO contests (
		id, name, platform, start_time, duration_seconds, duration_label, link, status, solutions, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Name, string(c.Platform), c.StartTime.UTC(), int64(c.Duration/time.Second), c.DurationLabel(),
		c.Link, string(c.Status), solutions, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert contest %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert contest %s: %w", c.ID, err)
	}
	return n > 0, nil
}

// SaveContest persists the status and solutions of an existing contest.
func (db *DB) SaveContest(ctx context.Context, c *models.Contest) (err error) {
	start := time.Now()
	defer func() { observe("update", "contests", start, err) }()

	solutions, err := encodeSolutions(c.Solutions)
	if err != nil {
		return err
	}
	c.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE contests SET status = ?, solutions = ?, updated_at = ? WHERE id = ?",
		string(c.Status), solutions, c.UpdatedAt.UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("save contest %s: %w", c.ID, err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListContests returns every stored contest ordered by start time.
func (db *DB) ListContests(ctx context.Context) (contests []models.Contest, err error) {
	start := time.Now()
	defer func() { observe("list", "contests", start, err) }()

	return db.queryContests(ctx, "SELECT "+contestColumns+" FROM contests ORDER BY start_time, id")
}

// ListContestsByStatus returns contests with status, ordered by start time
// ascending or descending. limit <= 0 returns all of them.
func (db *DB) ListContestsByStatus(ctx context.Context, status models.ContestStatus, ascending bool, limit int) (contests []models.Contest, err error) {
	start := time.Now()
	defer func() { observe("list_by_status", "contests", start, err) }()

	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := "SELECT " + contestColumns + " FROM contests WHERE status = ? ORDER BY start_time " + order + ", id " + order
	args := []interface{}{string(status)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return db.queryContests(ctx, query, args...)
}

func (db *DB) queryContests(ctx context.Context, query string, args ...interface{}) ([]models.Contest, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contests: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]models.Contest, 0)
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contests: %w", err)
	}
	return out, nil
}

// PrunePastContests deletes past contests beyond the keep most recent by
// start time and returns how many were removed. The keep-set and the delete
// run in one transaction.
func (db *DB) PrunePastContests(ctx context.Context, keep int) (removed int64, err error) {
	start := time.Now()
	defer func() { observe("prune", "contests", start, err) }()

	if keep < 0 {
		keep = 0
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer rollbackQuietly(tx)

	var total int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM contests WHERE status = ?", string(models.ContestPast)).Scan(&total); err != nil {
		return 0, fmt.Errorf("count past contests: %w", err)
	}
	if total <= int64(keep) {
		return 0, tx.Commit()
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM contests
		WHERE status = ?
		AND id NOT IN (
			SELECT id FROM contests WHERE status = ?
			ORDER BY start_time DESC, id DESC
			LIMIT ?
		)`, string(models.ContestPast), string(models.ContestPast), keep)
	if err != nil {
		return 0, fmt.Errorf("prune past contests: %w", err)
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune past contests: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}
