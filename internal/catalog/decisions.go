package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

// InsertDecision stores one executor verdict and fills in the generated id
// and timestamp. Payload and diagnostics land as JSONB so the decision log
// replays exactly what the executor returned.
func (s *Store) InsertDecision(ctx context.Context, d *models.Decision) error {
	query := `
		INSERT INTO autopost.decisions (rule_id, creator_id, platform, state, reason,
			caption_id, cta_id, hashtag_set_id, payload, diagnostics, post_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	reason := sql.NullString{String: d.Reason, Valid: d.Reason != ""}
	postRef := sql.NullString{String: d.PostRef, Valid: d.PostRef != ""}

	err := s.db.QueryRowContext(ctx, query,
		d.RuleID, d.CreatorID, d.Platform, d.State, reason,
		d.CaptionID, d.CTAID, d.HashtagSetID, d.Payload, d.Diagnostics, postRef,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// SetDecisionPostRef attaches a dispatch receipt to a stored decision. The
// decision row exists before dispatch runs, so a crash mid-dispatch leaves
// the verdict durable with an empty post_ref.
func (s *Store) SetDecisionPostRef(ctx context.Context, id, postRef string) error {
	query := `
		UPDATE autopost.decisions
		SET post_ref = $2
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, postRef)
	if err != nil {
		return fmt.Errorf("failed to set decision post_ref: %w", err)
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

// ListDecisions returns a creator's most recent decisions, newest first.
func (s *Store) ListDecisions(ctx context.Context, creatorID string, limit int) ([]models.Decision, error) {
	query := `
		SELECT id, rule_id, creator_id, platform, state, reason,
		       caption_id, cta_id, hashtag_set_id, payload, diagnostics, post_ref, created_at
		FROM autopost.decisions
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, creatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var d models.Decision
		var ruleID, captionID, ctaID, hashtagSetID, reason, postRef sql.NullString
		if err := rows.Scan(&d.ID, &ruleID, &d.CreatorID, &d.Platform, &d.State, &reason,
			&captionID, &ctaID, &hashtagSetID, &d.Payload, &d.Diagnostics, &postRef, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if ruleID.Valid {
			v := ruleID.String
			d.RuleID = &v
		}
		if captionID.Valid {
			v := captionID.String
			d.CaptionID = &v
		}
		if ctaID.Valid {
			v := ctaID.String
			d.CTAID = &v
		}
		if hashtagSetID.Valid {
			v := hashtagSetID.String
			d.HashtagSetID = &v
		}
		d.Reason = reason.String
		d.PostRef = postRef.String
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
