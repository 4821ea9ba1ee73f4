package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

const ruleColumns = `id, creator_id, platform, cadence_minutes, next_run_at, comfort_explicitness_max,
	       cooldown_seconds, tone_allowlist, max_hashtags, creator_pct, platform_pct, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (models.Rule, error) {
	var r models.Rule
	var allowlist []string
	err := row.Scan(&r.ID, &r.CreatorID, &r.Platform, &r.CadenceMinutes, &r.NextRunAt,
		&r.ComfortExplicitnessMax, &r.CooldownSeconds, pq.Array(&allowlist), &r.MaxHashtags,
		&r.CreatorPct, &r.PlatformPct, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return models.Rule{}, err
	}
	r.ToneAllowlist = allowlist
	return r, nil
}

// DueRules returns the active rules whose next_run_at has passed, oldest
// first, so the scheduler drains the backlog in arrival order.
func (s *Store) DueRules(ctx context.Context, now time.Time) ([]models.Rule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM autopost.rules
		WHERE active AND next_run_at <= $1
		ORDER BY next_run_at`, ruleColumns)

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRule fetches a single rule by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM autopost.rules
		WHERE id = $1`, ruleColumns)

	r, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &r, nil
}

// ListRules returns every rule a creator owns, newest first.
func (s *Store) ListRules(ctx context.Context, creatorID string) ([]models.Rule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM autopost.rules
		WHERE creator_id = $1
		ORDER BY created_at DESC`, ruleColumns)

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CreateRule stores a new rule and fills in the generated id and timestamps.
// The caller decides the first next_run_at; the scheduler owns it afterwards.
func (s *Store) CreateRule(ctx context.Context, r *models.Rule) error {
	query := `
		INSERT INTO autopost.rules (creator_id, platform, cadence_minutes, next_run_at,
			comfort_explicitness_max, cooldown_seconds, tone_allowlist, max_hashtags,
			creator_pct, platform_pct, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		r.CreatorID, r.Platform, r.CadenceMinutes, r.NextRunAt,
		r.ComfortExplicitnessMax, r.CooldownSeconds, pq.Array(r.ToneAllowlist), r.MaxHashtags,
		r.CreatorPct, r.PlatformPct, r.Active,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// UpdateRule writes back every mutable field of a rule, scoped by creator so
// a rule can only be edited by its owner.
func (s *Store) UpdateRule(ctx context.Context, r *models.Rule) error {
	query := `
		UPDATE autopost.rules
		SET platform = $3, cadence_minutes = $4, comfort_explicitness_max = $5,
		    cooldown_seconds = $6, tone_allowlist = $7, max_hashtags = $8,
		    creator_pct = $9, platform_pct = $10, active = $11, updated_at = NOW()
		WHERE id = $1 AND creator_id = $2`

	result, err := s.db.ExecContext(ctx, query,
		r.ID, r.CreatorID, r.Platform, r.CadenceMinutes, r.ComfortExplicitnessMax,
		r.CooldownSeconds, pq.Array(r.ToneAllowlist), r.MaxHashtags,
		r.CreatorPct, r.PlatformPct, r.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AdvanceRule moves a rule's next_run_at forward. Called after every run,
// whatever the decision state, so a blocked rule cannot wedge the scheduler.
func (s *Store) AdvanceRule(ctx context.Context, id string, nextRun time.Time) error {
	query := `
		UPDATE autopost.rules
		SET next_run_at = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, nextRun)
	if err != nil {
		return fmt.Errorf("failed to advance rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
