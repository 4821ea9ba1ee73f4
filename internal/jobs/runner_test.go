package jobs

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/catalog"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/selection"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

func newTestRunner(t *testing.T, opts Options) (*Runner, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	store := catalog.NewStore(db, logging.NewLogger())
	return NewRunner(store, logging.NewLogger(), opts), mock, func() { db.Close() }
}

// timeNear matches a time argument within a tolerance of the expected
// instant, for asserting schedule math without pinning the runner's clock.
type timeNear struct {
	want   time.Time
	within time.Duration
}

func (m timeNear) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	d := ts.Sub(m.want)
	if d < 0 {
		d = -d
	}
	return d <= m.within
}

func candidateColumns(textColumn string) []string {
	return []string{"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", textColumn, "max_explicitness"}
}

func testRule() *models.Rule {
	return &models.Rule{
		ID:                     "rule-1",
		CreatorID:              "creator-1",
		Platform:               "fanvue",
		CadenceMinutes:         60,
		ComfortExplicitnessMax: 3,
		CooldownSeconds:        0,
		MaxHashtags:            5,
		CreatorPct:             80,
		PlatformPct:            20,
		Active:                 true,
	}
}

func TestExecuteRuleReadyPersistsRecordsAndDispatches(t *testing.T) {
	runner, mock, cleanup := newTestRunner(t, Options{DispatchEnabled: true})
	defer cleanup()

	captionCols := []string{"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "caption_text", "explicitness_level"}
	mock.ExpectQuery(`FROM autopost\.captions WHERE creator_id = \$1 AND platform = \$2`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(captionCols).
			AddRow("cap-1", true, true, "fanvue", []byte(`{flirty}`), 0, nil, "New set just dropped", 1))

	mock.ExpectQuery(`FROM autopost\.ctas WHERE creator_id = \$1 AND platform = \$2`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("cta_text")).
			AddRow("cta-1", true, true, "fanvue", []byte(`{flirty}`), 0, nil, "Link in bio", nil))

	mock.ExpectQuery(`FROM autopost\.hashtag_sets WHERE creator_id = \$1 AND platform = \$2`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("hashtags")).
			AddRow("set-1", true, true, "fanvue", []byte(`{flirty}`), 0, nil, []byte(`{"#new","#daily"}`), nil))

	mock.ExpectQuery(`INSERT INTO autopost\.decisions`).
		WithArgs("rule-1", "creator-1", "fanvue", "READY", nil, "cap-1", "cta-1", "set-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("dec-1", time.Now()))

	mock.ExpectExec(`UPDATE autopost\.captions SET times_used`).
		WithArgs("cap-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE autopost\.ctas SET times_used`).
		WithArgs("cta-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE autopost\.hashtag_sets SET times_used`).
		WithArgs("set-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE autopost\.decisions SET post_ref = \$2 WHERE id = \$1`).
		WithArgs("dec-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE autopost\.rules SET next_run_at = \$2`).
		WithArgs("rule-1", timeNear{want: time.Now().UTC().Add(time.Hour), within: time.Minute}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	decision, err := runner.ExecuteRule(context.Background(), testRule())
	if err != nil {
		t.Fatalf("ExecuteRule failed: %v", err)
	}
	if decision.State != "READY" {
		t.Errorf("expected READY, got %s", decision.State)
	}
	if decision.ID != "dec-1" {
		t.Errorf("expected stored decision id, got %q", decision.ID)
	}
	if decision.PostRef == "" {
		t.Error("expected a post_ref after dispatch")
	}
	if decision.CaptionID == nil || *decision.CaptionID != "cap-1" {
		t.Errorf("expected caption_id cap-1, got %v", decision.CaptionID)
	}
	if decision.Payload["caption_text"] != "New set just dropped" {
		t.Errorf("unexpected payload caption: %v", decision.Payload["caption_text"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteRuleBlockedSkipsUsageAndDispatch(t *testing.T) {
	runner, mock, cleanup := newTestRunner(t, Options{DispatchEnabled: true})
	defer cleanup()

	captionCols := []string{"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "caption_text", "explicitness_level"}
	mock.ExpectQuery(`FROM autopost\.captions`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(captionCols))
	mock.ExpectQuery(`FROM autopost\.ctas`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("cta_text")))
	mock.ExpectQuery(`FROM autopost\.hashtag_sets`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("hashtags")))

	mock.ExpectQuery(`INSERT INTO autopost\.decisions`).
		WithArgs("rule-1", "creator-1", "fanvue", "BLOCKED", "NO_ELIGIBLE_CAPTIONS",
			nil, nil, nil, nil, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("dec-2", time.Now()))

	mock.ExpectExec(`UPDATE autopost\.rules SET next_run_at = \$2`).
		WithArgs("rule-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	decision, err := runner.ExecuteRule(context.Background(), testRule())
	if err != nil {
		t.Fatalf("ExecuteRule failed: %v", err)
	}
	if decision.State != "BLOCKED" {
		t.Errorf("expected BLOCKED, got %s", decision.State)
	}
	if decision.Reason != "NO_ELIGIBLE_CAPTIONS" {
		t.Errorf("unexpected reason %q", decision.Reason)
	}
	if decision.PostRef != "" {
		t.Errorf("blocked run must not dispatch, got post_ref %q", decision.PostRef)
	}
	if decision.Payload != nil {
		t.Errorf("blocked run must not carry a payload, got %v", decision.Payload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteRulePartialReadySkipsMissingSlots(t *testing.T) {
	runner, mock, cleanup := newTestRunner(t, Options{DispatchEnabled: true})
	defer cleanup()

	captionCols := []string{"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "caption_text", "explicitness_level"}
	mock.ExpectQuery(`FROM autopost\.captions`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(captionCols).
			AddRow("cap-1", true, true, "fanvue", []byte(`{}`), 2, nil, "Back online", 0))
	mock.ExpectQuery(`FROM autopost\.ctas`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("cta_text")))
	mock.ExpectQuery(`FROM autopost\.hashtag_sets`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("hashtags")))

	mock.ExpectQuery(`INSERT INTO autopost\.decisions`).
		WithArgs("rule-1", "creator-1", "fanvue", "PARTIAL_READY", nil,
			"cap-1", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("dec-3", time.Now()))

	mock.ExpectExec(`UPDATE autopost\.captions SET times_used`).
		WithArgs("cap-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE autopost\.decisions SET post_ref`).
		WithArgs("dec-3", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE autopost\.rules SET next_run_at = \$2`).
		WithArgs("rule-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	decision, err := runner.ExecuteRule(context.Background(), testRule())
	if err != nil {
		t.Fatalf("ExecuteRule failed: %v", err)
	}
	if decision.State != "PARTIAL_READY" {
		t.Errorf("expected PARTIAL_READY, got %s", decision.State)
	}
	if decision.CTAID != nil || decision.HashtagSetID != nil {
		t.Errorf("expected empty optional slots, got cta=%v hashtags=%v", decision.CTAID, decision.HashtagSetID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteRulePoolFetchFailureDoesNotAdvance(t *testing.T) {
	runner, mock, cleanup := newTestRunner(t, Options{})
	defer cleanup()

	mock.ExpectQuery(`FROM autopost\.captions`).
		WithArgs("creator-1", "fanvue").
		WillReturnError(errors.New("connection reset"))

	if _, err := runner.ExecuteRule(context.Background(), testRule()); err == nil {
		t.Fatal("expected error from failed pool fetch")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteRuleDispatchDisabledLeavesPostRefEmpty(t *testing.T) {
	runner, mock, cleanup := newTestRunner(t, Options{DispatchEnabled: false})
	defer cleanup()

	captionCols := []string{"id", "approved", "active", "platform", "tone", "times_used", "last_used_at", "caption_text", "explicitness_level"}
	mock.ExpectQuery(`FROM autopost\.captions`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(captionCols).
			AddRow("cap-1", true, true, "fanvue", []byte(`{}`), 0, nil, "Quiet mode", 0))
	mock.ExpectQuery(`FROM autopost\.ctas`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("cta_text")))
	mock.ExpectQuery(`FROM autopost\.hashtag_sets`).
		WithArgs("creator-1", "fanvue").
		WillReturnRows(sqlmock.NewRows(candidateColumns("hashtags")))

	mock.ExpectQuery(`INSERT INTO autopost\.decisions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("dec-4", time.Now()))

	mock.ExpectExec(`UPDATE autopost\.captions SET times_used`).
		WithArgs("cap-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE autopost\.rules SET next_run_at = \$2`).
		WithArgs("rule-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	decision, err := runner.ExecuteRule(context.Background(), testRule())
	if err != nil {
		t.Fatalf("ExecuteRule failed: %v", err)
	}
	if decision.PostRef != "" {
		t.Errorf("dispatch disabled, got post_ref %q", decision.PostRef)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestObserveRejectionsCountsEveryStage(t *testing.T) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_rejections_total"}, []string{"selector", "stage"})

	hashtags := &selection.HashtagDiagnostics{RejectedEligibility: 1}
	observeRejections(vec, selection.Diagnostics{
		Caption: selection.CaptionDiagnostics{
			RejectedEligibility:  2,
			RejectedExplicitness: 1,
			RejectedCooldown:     3,
		},
		CTA:      &selection.CTADiagnostics{RejectedTone: 4},
		Hashtags: hashtags,
	})

	if got := testutil.ToFloat64(vec.WithLabelValues("caption", "cooldown")); got != 3 {
		t.Errorf("caption cooldown rejections = %v, want 3", got)
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("cta", "tone")); got != 4 {
		t.Errorf("cta tone rejections = %v, want 4", got)
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("hashtags", "eligibility")); got != 1 {
		t.Errorf("hashtag eligibility rejections = %v, want 1", got)
	}
}

func TestRunnerStartStop(t *testing.T) {
	runner, _, cleanup := newTestRunner(t, Options{Interval: 50 * time.Millisecond})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner.Start(ctx)
	runner.Stop()
	// Stop closes the channel; a second tick after Stop must not fire.
	time.Sleep(80 * time.Millisecond)
}
