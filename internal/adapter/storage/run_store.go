// internal/adapter/storage/run_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sovlens/internal/domain/analysis"
	"sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RunStore implements storage for analysis runs and their outputs
type RunStore struct {
	db *pgxpool.Pool
}

// NewRunStore creates a new run store
func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{
		db: db,
	}
}

// SaveRun saves a run to storage
func (s *RunStore) SaveRun(ctx context.Context, run analysis.Run) error {
	query := `
		INSERT INTO analysis_runs (
			id, status, keywords, platforms, item_count,
			error, warnings, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("error marshaling warnings: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		run.ID,
		run.Status,
		run.Keywords,
		run.Platforms,
		run.ItemCount,
		run.Error,
		warningsJSON,
		run.StartedAt,
		run.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// UpdateRun updates a run in storage
func (s *RunStore) UpdateRun(ctx context.Context, run analysis.Run) error {
	query := `
		UPDATE analysis_runs
		SET
			status = $2,
			item_count = $3,
			error = $4,
			warnings = $5,
			completed_at = $6
		WHERE id = $1
	`

	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("error marshaling warnings: %w", err)
	}

	tag, err := s.db.Exec(
		ctx,
		query,
		run.ID,
		run.Status,
		run.ItemCount,
		run.Error,
		warningsJSON,
		run.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}

	return nil
}

// GetRun retrieves a run by ID
func (s *RunStore) GetRun(ctx context.Context, id string) (*analysis.Run, error) {
	query := `
		SELECT
			id, status, keywords, platforms, item_count,
			error, warnings, started_at, completed_at
		FROM analysis_runs
		WHERE id = $1
	`

	var run analysis.Run
	var warningsJSON []byte

	err := s.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.Keywords,
		&run.Platforms,
		&run.ItemCount,
		&run.Error,
		&warningsJSON,
		&run.StartedAt,
		&run.CompletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying run: %w", err)
	}

	if err := json.Unmarshal(warningsJSON, &run.Warnings); err != nil {
		return nil, fmt.Errorf("error unmarshaling warnings: %w", err)
	}

	return &run, nil
}

// ListRuns lists runs matching the filter, newest first
func (s *RunStore) ListRuns(ctx context.Context, filter analysis.Filter) ([]analysis.Run, error) {
	query := `
		SELECT
			id, status, keywords, platforms, item_count,
			error, warnings, started_at, completed_at
		FROM analysis_runs
	`

	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var runs []analysis.Run
	for rows.Next() {
		var run analysis.Run
		var warningsJSON []byte

		err := rows.Scan(
			&run.ID,
			&run.Status,
			&run.Keywords,
			&run.Platforms,
			&run.ItemCount,
			&run.Error,
			&warningsJSON,
			&run.StartedAt,
			&run.CompletedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}

		if err := json.Unmarshal(warningsJSON, &run.Warnings); err != nil {
			return nil, fmt.Errorf("error unmarshaling warnings: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveScores saves the score matrix of a run
func (s *RunStore) SaveScores(ctx context.Context, runID string, scores []sov.Score) error {
	query := `
		INSERT INTO sov_scores (
			run_id, brand, platform, raw_score, normalized_share,
			mention_count, item_count, positive_mentions,
			average_rank, average_sentiment
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10
		)
		ON CONFLICT (run_id, brand, platform) DO UPDATE
		SET
			raw_score = $4,
			normalized_share = $5,
			mention_count = $6,
			item_count = $7,
			positive_mentions = $8,
			average_rank = $9,
			average_sentiment = $10
	`

	for _, score := range scores {
		_, err := s.db.Exec(
			ctx,
			query,
			runID,
			score.Brand,
			score.Platform,
			score.RawScore,
			score.NormalizedShare,
			score.MentionCount,
			score.ItemCount,
			score.PositiveMentions,
			score.AverageRank,
			score.AverageSentiment,
		)

		if err != nil {
			return fmt.Errorf("error saving score for %s/%s: %w", score.Brand, score.Platform, err)
		}
	}

	return nil
}

// GetScores retrieves the score matrix of a run
func (s *RunStore) GetScores(ctx context.Context, runID string) ([]sov.Score, error) {
	query := `
		SELECT
			brand, platform, raw_score, normalized_share,
			mention_count, item_count, positive_mentions,
			average_rank, average_sentiment
		FROM sov_scores
		WHERE run_id = $1
		ORDER BY platform, brand
	`

	rows, err := s.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var scores []sov.Score
	for rows.Next() {
		var score sov.Score

		err := rows.Scan(
			&score.Brand,
			&score.Platform,
			&score.RawScore,
			&score.NormalizedShare,
			&score.MentionCount,
			&score.ItemCount,
			&score.PositiveMentions,
			&score.AverageRank,
			&score.AverageSentiment,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning score: %w", err)
		}

		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return scores, nil
}

// SaveInsights saves the insights of a run
func (s *RunStore) SaveInsights(ctx context.Context, runID string, insights []insight.Insight) error {
	query := `
		INSERT INTO insights (
			run_id, position, type, brand, description,
			recommendation, priority, score
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)
		ON CONFLICT (run_id, position) DO UPDATE
		SET
			type = $3,
			brand = $4,
			description = $5,
			recommendation = $6,
			priority = $7,
			score = $8
	`

	for i, ins := range insights {
		_, err := s.db.Exec(
			ctx,
			query,
			runID,
			i,
			ins.Type,
			ins.Brand,
			ins.Description,
			ins.Recommendation,
			ins.Priority,
			ins.Score,
		)

		if err != nil {
			return fmt.Errorf("error saving insight %d: %w", i, err)
		}
	}

	return nil
}

// GetInsights retrieves the insights of a run in their original order
func (s *RunStore) GetInsights(ctx context.Context, runID string) ([]insight.Insight, error) {
	query := `
		SELECT
			type, brand, description, recommendation, priority, score
		FROM insights
		WHERE run_id = $1
		ORDER BY position
	`

	rows, err := s.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var insights []insight.Insight
	for rows.Next() {
		var ins insight.Insight

		err := rows.Scan(
			&ins.Type,
			&ins.Brand,
			&ins.Description,
			&ins.Recommendation,
			&ins.Priority,
			&ins.Score,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning insight: %w", err)
		}

		insights = append(insights, ins)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}

	return insights, nil
}
