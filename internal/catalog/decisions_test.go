package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

func TestInsertDecisionFillsGenerated(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	createdAt := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	ruleID := "rule-1"
	captionID := "cap-1"

	mock.ExpectQuery(`INSERT INTO autopost.decisions`).
		WithArgs(&ruleID, "creator-1", "fanvue", "READY", sqlmock.AnyArg(),
			&captionID, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("dec-1", createdAt))

	decision := &models.Decision{
		RuleID:    &ruleID,
		CreatorID: "creator-1",
		Platform:  "fanvue",
		State:     "READY",
		CaptionID: &captionID,
		Payload:   models.JSONB{"caption_text": "hello"},
		Diagnostics: models.JSONB{
			"caption": map[string]interface{}{"input_count": 1},
		},
		PostRef: "post-abc",
	}
	if err := store.InsertDecision(context.Background(), decision); err != nil {
		t.Fatalf("InsertDecision returned error: %v", err)
	}
	if decision.ID != "dec-1" {
		t.Errorf("expected generated id to be filled in, got %q", decision.ID)
	}
	if !decision.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at to be filled in, got %v", decision.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListDecisionsScansNullables(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	createdAt := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "rule_id", "creator_id", "platform", "state", "reason",
		"caption_id", "cta_id", "hashtag_set_id", "payload", "diagnostics", "post_ref", "created_at",
	}).
		AddRow("dec-1", "rule-1", "creator-1", "fanvue", "READY", nil,
			"cap-1", "cta-1", nil, []byte(`{"caption_text":"hello"}`), []byte(`{"platform":"fanvue"}`), "post-abc", createdAt).
		AddRow("dec-2", nil, "creator-1", "fanvue", "BLOCKED", "NO_ELIGIBLE_CAPTIONS",
			nil, nil, nil, nil, []byte(`{"platform":"fanvue"}`), nil, createdAt.Add(-time.Minute))

	mock.ExpectQuery(`FROM autopost.decisions WHERE creator_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("creator-1", 50).
		WillReturnRows(rows)

	decisions, err := store.ListDecisions(context.Background(), "creator-1", 50)
	if err != nil {
		t.Fatalf("ListDecisions returned error: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(decisions))
	}

	ready := decisions[0]
	if ready.RuleID == nil || *ready.RuleID != "rule-1" {
		t.Errorf("expected rule_id rule-1, got %v", ready.RuleID)
	}
	if ready.Payload["caption_text"] != "hello" {
		t.Errorf("expected payload JSONB scanned, got %v", ready.Payload)
	}
	if ready.PostRef != "post-abc" {
		t.Errorf("expected post_ref post-abc, got %q", ready.PostRef)
	}

	blocked := decisions[1]
	if blocked.RuleID != nil {
		t.Errorf("expected nil rule_id for ad-hoc decision, got %v", *blocked.RuleID)
	}
	if blocked.Reason != "NO_ELIGIBLE_CAPTIONS" {
		t.Errorf("expected blocked reason, got %q", blocked.Reason)
	}
	if blocked.Payload != nil {
		t.Errorf("expected nil payload for blocked decision, got %v", blocked.Payload)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
