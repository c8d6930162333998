package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists results as semi-structured JSON blobs inside a
// relational row, mirroring how attempts are usually stored: scalar
// columns for the queryable fields, TEXT blobs for the snapshot.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SaveResult(ctx context.Context, r Result) error {
	wj, err := json.Marshal(r.DetailedWeaknesses)
	if err != nil {
		return err
	}
	sj, err := json.Marshal(r.Snapshot)
	if err != nil {
		return err
	}
	created := r.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluation_results
		   (id, user_id, score, total_questions, points_delta, weakness_summary, weaknesses_json, snapshot_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.UserID, r.Score, r.TotalQuestions, r.PointsDelta,
		r.WeaknessSummary, string(wj), string(sj), created)
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, score, total_questions, points_delta, weakness_summary, weaknesses_json, snapshot_json, created_at
		 FROM evaluation_results WHERE id=$1`, id)
	return scanResult(row.Scan)
}

func (s *SQLStore) ListResults(ctx context.Context, userID string, limit, offset int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, score, total_questions, points_delta, weakness_summary, weaknesses_json, snapshot_json, created_at
		 FROM evaluation_results WHERE user_id=$1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddPoints(ctx context.Context, userID string, delta int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET points = points + $1 WHERE id=$2`, delta, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func scanResult(scan func(dest ...any) error) (Result, error) {
	var r Result
	var wj, sj string
	err := scan(&r.ID, &r.UserID, &r.Score, &r.TotalQuestions, &r.PointsDelta,
		&r.WeaknessSummary, &wj, &sj, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(wj), &r.DetailedWeaknesses); err != nil {
		r.DetailedWeaknesses = []string{}
	}
	if err := json.Unmarshal([]byte(sj), &r.Snapshot); err != nil {
		return Result{}, err
	}
	return r, nil
}
