package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/selection"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

const (
	captionsTable    = "autopost.captions"
	ctasTable        = "autopost.ctas"
	hashtagSetsTable = "autopost.hashtag_sets"
)

// ListCaptions returns every caption candidate for a creator on a platform,
// shaped for the selector. Rows are not pre-filtered on approved or active;
// the selector rejects those itself so the rejection shows up in diagnostics.
func (s *Store) ListCaptions(ctx context.Context, creatorID, platform string) ([]selection.CaptionRecord, error) {
	query := `
		SELECT id, approved, active, platform, tone, times_used, last_used_at, caption_text, explicitness_level
		FROM autopost.captions
		WHERE creator_id = $1 AND platform = $2
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, creatorID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to query captions: %w", err)
	}
	defer rows.Close()

	var records []selection.CaptionRecord
	for rows.Next() {
		var rec selection.CaptionRecord
		var tone []string
		var lastUsed sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Approved, &rec.Active, &rec.Platform, pq.Array(&tone),
			&rec.TimesUsed, &lastUsed, &rec.CaptionText, &rec.ExplicitnessLevel); err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		rec.Tone = tone
		rec.LastUsedAt = renderLastUsed(lastUsed)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListCTAs returns every CTA candidate for a creator on a platform, shaped
// for the selector.
func (s *Store) ListCTAs(ctx context.Context, creatorID, platform string) ([]selection.CTARecord, error) {
	query := `
		SELECT id, approved, active, platform, tone, times_used, last_used_at, cta_text, max_explicitness
		FROM autopost.ctas
		WHERE creator_id = $1 AND platform = $2
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, creatorID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to query ctas: %w", err)
	}
	defer rows.Close()

	var records []selection.CTARecord
	for rows.Next() {
		var rec selection.CTARecord
		var tone []string
		var lastUsed sql.NullTime
		var maxExplicitness sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Approved, &rec.Active, &rec.Platform, pq.Array(&tone),
			&rec.TimesUsed, &lastUsed, &rec.CTAText, &maxExplicitness); err != nil {
			return nil, fmt.Errorf("failed to scan cta: %w", err)
		}
		rec.Tone = tone
		rec.LastUsedAt = renderLastUsed(lastUsed)
		if maxExplicitness.Valid {
			v := int(maxExplicitness.Int64)
			rec.MaxExplicitness = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListHashtagSets returns every hashtag-set candidate for a creator on a
// platform, shaped for the selector.
func (s *Store) ListHashtagSets(ctx context.Context, creatorID, platform string) ([]selection.HashtagSetRecord, error) {
	query := `
		SELECT id, approved, active, platform, tone, times_used, last_used_at, hashtags, max_explicitness
		FROM autopost.hashtag_sets
		WHERE creator_id = $1 AND platform = $2
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, creatorID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to query hashtag sets: %w", err)
	}
	defer rows.Close()

	var records []selection.HashtagSetRecord
	for rows.Next() {
		var rec selection.HashtagSetRecord
		var tone, hashtags []string
		var lastUsed sql.NullTime
		var maxExplicitness sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Approved, &rec.Active, &rec.Platform, pq.Array(&tone),
			&rec.TimesUsed, &lastUsed, pq.Array(&hashtags), &maxExplicitness); err != nil {
			return nil, fmt.Errorf("failed to scan hashtag set: %w", err)
		}
		rec.Tone = tone
		rec.Hashtags = hashtags
		rec.LastUsedAt = renderLastUsed(lastUsed)
		if maxExplicitness.Valid {
			v := int(maxExplicitness.Int64)
			rec.MaxExplicitness = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListCaptionRows returns the full caption rows for a creator, newest first.
func (s *Store) ListCaptionRows(ctx context.Context, creatorID string) ([]models.Caption, error) {
	query := `
		SELECT id, creator_id, platform, caption_text, explicitness_level, tone,
		       approved, active, times_used, last_used_at, created_at, updated_at
		FROM autopost.captions
		WHERE creator_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query caption rows: %w", err)
	}
	defer rows.Close()

	var captions []models.Caption
	for rows.Next() {
		var c models.Caption
		var tone []string
		var lastUsed sql.NullTime
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Platform, &c.CaptionText, &c.ExplicitnessLevel,
			pq.Array(&tone), &c.Approved, &c.Active, &c.TimesUsed, &lastUsed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan caption row: %w", err)
		}
		c.Tone = tone
		if lastUsed.Valid {
			t := lastUsed.Time
			c.LastUsedAt = &t
		}
		captions = append(captions, c)
	}
	return captions, rows.Err()
}

// ListCTARows returns the full CTA rows for a creator, newest first.
func (s *Store) ListCTARows(ctx context.Context, creatorID string) ([]models.CTA, error) {
	query := `
		SELECT id, creator_id, platform, cta_text, max_explicitness, tone,
		       approved, active, times_used, last_used_at, created_at, updated_at
		FROM autopost.ctas
		WHERE creator_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cta rows: %w", err)
	}
	defer rows.Close()

	var ctas []models.CTA
	for rows.Next() {
		var c models.CTA
		var tone []string
		var lastUsed sql.NullTime
		var maxExplicitness sql.NullInt64
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Platform, &c.CTAText, &maxExplicitness,
			pq.Array(&tone), &c.Approved, &c.Active, &c.TimesUsed, &lastUsed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cta row: %w", err)
		}
		c.Tone = tone
		if maxExplicitness.Valid {
			v := int(maxExplicitness.Int64)
			c.MaxExplicitness = &v
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			c.LastUsedAt = &t
		}
		ctas = append(ctas, c)
	}
	return ctas, rows.Err()
}

// ListHashtagSetRows returns the full hashtag-set rows for a creator, newest first.
func (s *Store) ListHashtagSetRows(ctx context.Context, creatorID string) ([]models.HashtagSet, error) {
	query := `
		SELECT id, creator_id, platform, hashtags, max_explicitness, tone,
		       approved, active, times_used, last_used_at, created_at, updated_at
		FROM autopost.hashtag_sets
		WHERE creator_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query hashtag set rows: %w", err)
	}
	defer rows.Close()

	var sets []models.HashtagSet
	for rows.Next() {
		var h models.HashtagSet
		var tone, hashtags []string
		var lastUsed sql.NullTime
		var maxExplicitness sql.NullInt64
		if err := rows.Scan(&h.ID, &h.CreatorID, &h.Platform, pq.Array(&hashtags), &maxExplicitness,
			pq.Array(&tone), &h.Approved, &h.Active, &h.TimesUsed, &lastUsed, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hashtag set row: %w", err)
		}
		h.Tone = tone
		h.Hashtags = hashtags
		if maxExplicitness.Valid {
			v := int(maxExplicitness.Int64)
			h.MaxExplicitness = &v
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			h.LastUsedAt = &t
		}
		sets = append(sets, h)
	}
	return sets, rows.Err()
}

// InsertCaption stores a new caption candidate and fills in the generated
// id and timestamps.
func (s *Store) InsertCaption(ctx context.Context, c *models.Caption) error {
	query := `
		INSERT INTO autopost.captions (creator_id, platform, caption_text, explicitness_level, tone, approved, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, times_used, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		c.CreatorID, c.Platform, c.CaptionText, c.ExplicitnessLevel, pq.Array(c.Tone), c.Approved, c.Active,
	).Scan(&c.ID, &c.TimesUsed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert caption: %w", err)
	}
	return nil
}

// InsertCTA stores a new CTA candidate and fills in the generated id and
// timestamps.
func (s *Store) InsertCTA(ctx context.Context, c *models.CTA) error {
	query := `
		INSERT INTO autopost.ctas (creator_id, platform, cta_text, max_explicitness, tone, approved, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, times_used, created_at, updated_at`

	var maxExplicitness sql.NullInt64
	if c.MaxExplicitness != nil {
		maxExplicitness = sql.NullInt64{Int64: int64(*c.MaxExplicitness), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		c.CreatorID, c.Platform, c.CTAText, maxExplicitness, pq.Array(c.Tone), c.Approved, c.Active,
	).Scan(&c.ID, &c.TimesUsed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cta: %w", err)
	}
	return nil
}

// InsertHashtagSet stores a new hashtag-set candidate and fills in the
// generated id and timestamps.
func (s *Store) InsertHashtagSet(ctx context.Context, h *models.HashtagSet) error {
	query := `
		INSERT INTO autopost.hashtag_sets (creator_id, platform, hashtags, max_explicitness, tone, approved, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, times_used, created_at, updated_at`

	var maxExplicitness sql.NullInt64
	if h.MaxExplicitness != nil {
		maxExplicitness = sql.NullInt64{Int64: int64(*h.MaxExplicitness), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		h.CreatorID, h.Platform, pq.Array(h.Hashtags), maxExplicitness, pq.Array(h.Tone), h.Approved, h.Active,
	).Scan(&h.ID, &h.TimesUsed, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hashtag set: %w", err)
	}
	return nil
}

// SetCaptionApproval flips the approved flag on a creator's caption.
func (s *Store) SetCaptionApproval(ctx context.Context, id, creatorID string, approved bool) error {
	return s.setApproval(ctx, captionsTable, id, creatorID, approved)
}

// SetCTAApproval flips the approved flag on a creator's CTA.
func (s *Store) SetCTAApproval(ctx context.Context, id, creatorID string, approved bool) error {
	return s.setApproval(ctx, ctasTable, id, creatorID, approved)
}

// SetHashtagSetApproval flips the approved flag on a creator's hashtag set.
func (s *Store) SetHashtagSetApproval(ctx context.Context, id, creatorID string, approved bool) error {
	return s.setApproval(ctx, hashtagSetsTable, id, creatorID, approved)
}

func (s *Store) setApproval(ctx context.Context, table, id, creatorID string, approved bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET approved = $3, updated_at = NOW()
		WHERE id = $1 AND creator_id = $2`, table)

	result, err := s.db.ExecContext(ctx, query, id, creatorID, approved)
	if err != nil {
		return fmt.Errorf("failed to update approval on %s: %w", table, err)
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

// RecordCaptionUse bumps usage on a caption after a publish. The counter
// increment and the timestamp land in one statement so a crash between the
// two can never skew future cooldown math.
func (s *Store) RecordCaptionUse(ctx context.Context, id string, usedAt time.Time) error {
	return s.recordUse(ctx, captionsTable, id, usedAt)
}

// RecordCTAUse bumps usage on a CTA after a publish.
func (s *Store) RecordCTAUse(ctx context.Context, id string, usedAt time.Time) error {
	return s.recordUse(ctx, ctasTable, id, usedAt)
}

// RecordHashtagSetUse bumps usage on a hashtag set after a publish.
func (s *Store) RecordHashtagSetUse(ctx context.Context, id string, usedAt time.Time) error {
	return s.recordUse(ctx, hashtagSetsTable, id, usedAt)
}

func (s *Store) recordUse(ctx context.Context, table, id string, usedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET times_used = times_used + 1, last_used_at = $2, updated_at = NOW()
		WHERE id = $1`, table)

	result, err := s.db.ExecContext(ctx, query, id, usedAt)
	if err != nil {
		return fmt.Errorf("failed to record use on %s: %w", table, err)
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

// renderLastUsed converts a nullable timestamp into the RFC 3339 string the
// selector's cooldown gate parses.
func renderLastUsed(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	rendered := t.Time.UTC().Format(time.RFC3339)
	return &rendered
}
