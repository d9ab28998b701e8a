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

	"github.com/google/uuid"

	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/validation"
)

const userColumns = `id, username, name, email, college_name,
	codeforces_handle, codechef_handle, leetcode_handle,
	codeforces_rating, codechef_rating, leetcode_rating, composite_score,
	ratings_updated_at, created_at`

// DefaultLeaderboardLimit applies when Leaderboard is called with limit <= 0.
const DefaultLeaderboardLimit = 100

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u         models.User
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.CollegeName,
		&u.Handles.Codeforces, &u.Handles.CodeChef, &u.Handles.LeetCode,
		&u.Ratings.Codeforces, &u.Ratings.CodeChef, &u.Ratings.LeetCode, &u.CompositeScore,
		&updatedAt, &u.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	if updatedAt.Valid {
		u.RatingsUpdatedAt = updatedAt.Time
	}
	return u, nil
}

// UpsertUser inserts a user or updates every mutable field of an existing
// one. Ratings are only written by UpdateRatings. Handles that the platform
// clients would refuse to query are rejected before anything is written.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "users", start, err) }()

	if verr := validation.ValidateStruct(&u.Handles); verr != nil {
		return fmt.Errorf("upsert user %q: %w", u.Username, verr)
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (
		id, username, name, email, college_name,
		codeforces_handle, codechef_handle, leetcode_handle, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		username = EXCLUDED.username,
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		college_name = EXCLUDED.college_name,
		codeforces_handle = EXCLUDED.codeforces_handle,
		codechef_handle = EXCLUDED.codechef_handle,
		leetcode_handle = EXCLUDED.leetcode_handle`,
		u.ID, u.Username, u.Name, u.Email, u.CollegeName,
		u.Handles.Codeforces, u.Handles.CodeChef, u.Handles.LeetCode, u.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

// GetUserByUsername returns the user with the given username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (user *models.User, err error) {
	start := time.Now()
	defer func() { observe("get", "users", start, err) }()

	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? ORDER BY created_at LIMIT 1", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &u, nil
}

// ListUsersWithHandles returns every user with at least one platform handle,
// oldest first.
func (db *DB) ListUsersWithHandles(ctx context.Context) (users []models.User, err error) {
	start := time.Now()
	defer func() { observe("list", "users", start, err) }()

	rows, err := db.conn.QueryContext(ctx, "SELECT "+userColumns+` FROM users
		WHERE codeforces_handle <> '' OR codechef_handle <> '' OR leetcode_handle <> ''
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	users = make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateRatings writes all three ratings and the composite score of one user
// in a single statement.
func (db *DB) UpdateRatings(ctx context.Context, userID string, r models.Ratings, score float64, at time.Time) (err error) {
	start := time.Now()
	defer func() { observe("update", "users", start, err) }()

	res, err := db.conn.ExecContext(ctx, `UPDATE users SET
		codeforces_rating = ?, codechef_rating = ?, leetcode_rating = ?,
		composite_score = ?, ratings_updated_at = ?
		WHERE id = ?`,
		r.Codeforces, r.CodeChef, r.LeetCode, score, at.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update ratings for %s: %w", userID, err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// leaderboardOrder maps a platform to its ORDER BY column. The empty
// platform ranks by composite score.
var leaderboardOrder = map[models.Platform]string{
	"":                        "composite_score",
	models.PlatformCodeforces: "codeforces_rating",
	models.PlatformCodeChef:   "codechef_rating",
	models.PlatformLeetCode:   "leetcode_rating",
}

// Leaderboard ranks users by platform rating, or by composite score when
// platform is empty. An empty college ranks everyone.
func (db *DB) Leaderboard(ctx context.Context, college string, platform models.Platform, limit int) (entries []models.LeaderboardEntry, err error) {
	start := time.Now()
	defer func() { observe("leaderboard", "users", start, err) }()

	column, ok := leaderboardOrder[platform]
	if !ok {
		return nil, fmt.Errorf("leaderboard: unsupported platform %q", platform)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	query := "SELECT " + userColumns + " FROM users"
	args := []interface{}{}
	if college != "" {
		query += " WHERE college_name = ?"
		args = append(args, college)
	}
	query += " ORDER BY " + column + " DESC, username ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer closeWithLog(rows, "rows")

	entries = make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:           len(entries) + 1,
			Username:       u.Username,
			Name:           u.Name,
			CollegeName:    u.CollegeName,
			Handle:         u.Handles.For(platform),
			Rating:         u.Ratings.For(platform),
			CompositeScore: u.CompositeScore,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
