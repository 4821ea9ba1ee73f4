package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewStore(db, logging.NewLogger()), mock, func() { db.Close() }
}

func TestListCaptionsRendersLastUsed(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	usedAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "caption_text", "explicitness_level",
	}).
		AddRow("cap-1", true, true, "fanvue", []byte(`{flirty,playful}`), 3, usedAt, "hello", 1).
		AddRow("cap-2", true, true, "fanvue", []byte(`{}`), 0, nil, "fresh", 2)

	mock.ExpectQuery(`SELECT id, approved, active, platform, tone, times_used, last_used_at, caption_text, explicitness_level FROM autopost.captions`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(rows)

	records, err := store.ListCaptions(context.Background(), "creator-1", "fanvue")
	if err != nil {
		t.Fatalf("ListCaptions returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].LastUsedAt == nil || *records[0].LastUsedAt != "2026-01-02T15:04:05Z" {
		t.Errorf("expected RFC 3339 last_used_at, got %v", records[0].LastUsedAt)
	}
	if len(records[0].Tone) != 2 || records[0].Tone[0] != "flirty" {
		t.Errorf("expected tone tags scanned from array, got %v", records[0].Tone)
	}
	if records[1].LastUsedAt != nil {
		t.Errorf("expected nil last_used_at for never-used caption, got %v", *records[1].LastUsedAt)
	}
	if records[1].TimesUsed != 0 {
		t.Errorf("expected times_used 0, got %d", records[1].TimesUsed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListCTAsNullableCeiling(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{
		"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "cta_text", "max_explicitness",
	}).
		AddRow("cta-1", true, true, "fanvue", []byte(`{}`), 0, nil, "subscribe now", 2).
		AddRow("cta-2", true, true, "fanvue", []byte(`{}`), 1, nil, "link in bio", nil)

	mock.ExpectQuery(`SELECT id, approved, active, platform, tone, times_used, last_used_at, cta_text, max_explicitness FROM autopost.ctas`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(rows)

	records, err := store.ListCTAs(context.Background(), "creator-1", "fanvue")
	if err != nil {
		t.Fatalf("ListCTAs returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].MaxExplicitness == nil || *records[0].MaxExplicitness != 2 {
		t.Errorf("expected ceiling 2, got %v", records[0].MaxExplicitness)
	}
	if records[1].MaxExplicitness != nil {
		t.Errorf("expected nil ceiling for null column, got %d", *records[1].MaxExplicitness)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListHashtagSetsScansArrays(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{
		"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "hashtags", "max_explicitness",
	}).
		AddRow("set-1", true, true, "instagram", []byte(`{playful}`), 2, nil, []byte(`{"#sub","#new","#daily"}`), nil)

	mock.ExpectQuery(`SELECT id, approved, active, platform, tone, times_used, last_used_at, hashtags, max_explicitness FROM autopost.hashtag_sets`).
		WithArgs("creator-1", "instagram").
		WillReturnRows(rows)

	records, err := store.ListHashtagSets(context.Background(), "creator-1", "instagram")
	if err != nil {
		t.Fatalf("ListHashtagSets returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].Hashtags) != 3 || records[0].Hashtags[0] != "#sub" {
		t.Errorf("expected hashtags scanned from array, got %v", records[0].Hashtags)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecordCaptionUse(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	usedAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	mock.ExpectExec(`UPDATE autopost.captions SET times_used = times_used \+ 1, last_used_at = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("cap-1", usedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.RecordCaptionUse(context.Background(), "cap-1", usedAt); err != nil {
		t.Fatalf("RecordCaptionUse returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecordCaptionUseMissingRow(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	usedAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	mock.ExpectExec(`UPDATE autopost.captions`).
		WithArgs("cap-gone", usedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RecordCaptionUse(context.Background(), "cap-gone", usedAt)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for missing caption, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRecordCTAUseTargetsCTATable(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	usedAt := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	mock.ExpectExec(`UPDATE autopost.ctas SET times_used = times_used \+ 1`).
		WithArgs("cta-1", usedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.RecordCTAUse(context.Background(), "cta-1", usedAt); err != nil {
		t.Fatalf("RecordCTAUse returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertCaptionFillsGenerated(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	createdAt := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO autopost.captions`).
		WithArgs("creator-1", "fanvue", "hello world", 1, sqlmock.AnyArg(), false, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "times_used", "created_at", "updated_at"}).
			AddRow("cap-new", 0, createdAt, createdAt))

	caption := &models.Caption{
		CreatorID:         "creator-1",
		Platform:          "fanvue",
		CaptionText:       "hello world",
		ExplicitnessLevel: 1,
		Tone:              []string{"flirty"},
		Approved:          false,
		Active:            true,
	}
	if err := store.InsertCaption(context.Background(), caption); err != nil {
		t.Fatalf("InsertCaption returned error: %v", err)
	}
	if caption.ID != "cap-new" {
		t.Errorf("expected generated id to be filled in, got %q", caption.ID)
	}
	if !caption.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at to be filled in, got %v", caption.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSetCaptionApprovalScopedByCreator(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	mock.ExpectExec(`UPDATE autopost.captions SET approved = \$3, updated_at = NOW\(\) WHERE id = \$1 AND creator_id = \$2`).
		WithArgs("cap-1", "creator-2", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetCaptionApproval(context.Background(), "cap-1", "creator-2", true)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows when caption belongs to another creator, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
