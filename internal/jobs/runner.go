// Package jobs drives scheduled autopost runs. The Runner owns every side
// effect around the pure selection executor: pool fetches, decision
// persistence, usage recording, dispatch, event publishing and alerting.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/alerts"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/catalog"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/dispatch"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/selection"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/kafka"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

// Metrics holds the Prometheus metrics the runner and handlers report.
type Metrics struct {
	SelectionRuns       *prometheus.CounterVec
	SelectionRejections *prometheus.CounterVec
	SelectionDuration   *prometheus.HistogramVec
	Dispatches          *prometheus.CounterVec
	DBQueries           *prometheus.CounterVec
	DBDuration          *prometheus.HistogramVec
	DBConnections       *prometheus.GaugeVec
}

// Options configures the optional collaborators of a Runner. Zero values
// disable the corresponding side effect.
type Options struct {
	Producer        *kafka.Producer
	Webhook         *alerts.Webhook
	Metrics         *Metrics
	Interval        time.Duration
	DispatchEnabled bool
}

// Runner executes due autopost rules on a ticker.
type Runner struct {
	store           *catalog.Store
	logger          *logrus.Logger
	producer        *kafka.Producer
	webhook         *alerts.Webhook
	metrics         *Metrics
	interval        time.Duration
	dispatchEnabled bool
	stopCh          chan struct{}
}

// NewRunner creates a runner. Producer, webhook and metrics may be left
// unset; the runner degrades to plain select-and-persist.
func NewRunner(store *catalog.Store, logger *logrus.Logger, opts Options) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		store:           store,
		logger:          logger,
		producer:        opts.Producer,
		webhook:         opts.Webhook,
		metrics:         opts.Metrics,
		interval:        interval,
		dispatchEnabled: opts.DispatchEnabled,
		stopCh:          make(chan struct{}),
	}
}

// Start begins the scheduling loop.
func (r *Runner) Start(ctx context.Context) {
	r.logger.WithField("interval", r.interval.String()).Info("Starting autopost runner")
	go r.runScheduler(ctx)
}

// Stop halts the scheduling loop. In-flight runs finish.
func (r *Runner) Stop() {
	r.logger.Info("Stopping autopost runner")
	close(r.stopCh)
}

func (r *Runner) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runDueRules(ctx)
		}
	}
}

// runDueRules executes every rule whose next_run_at has passed.
func (r *Runner) runDueRules(ctx context.Context) {
	now := time.Now().UTC()
	rules, err := r.store.DueRules(ctx, now)
	if err != nil {
		r.logger.WithError(err).Error("Failed to fetch due rules")
		return
	}
	if len(rules) == 0 {
		return
	}

	r.logger.WithField("due_rules", len(rules)).Info("Running due autopost rules")
	for i := range rules {
		if _, err := r.ExecuteRule(ctx, &rules[i]); err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"rule_id":    rules[i].ID,
				"creator_id": rules[i].CreatorID,
			}).Error("Autopost run failed")
		}
	}
}

// ExecuteRule runs the full pipeline for one rule: fetch pools, select,
// persist the decision, record usage, dispatch, publish the decision event
// and alert on blocked runs. The rule's schedule advances by its cadence once
// a verdict exists, whatever that verdict is; only infrastructure failures
// before selection leave next_run_at untouched so the next tick retries.
func (r *Runner) ExecuteRule(ctx context.Context, rule *models.Rule) (*models.Decision, error) {
	now := time.Now().UTC()
	nowISO := now.Format(time.RFC3339)

	captions, err := r.store.ListCaptions(ctx, rule.CreatorID, rule.Platform)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caption pool: %w", err)
	}
	ctas, err := r.store.ListCTAs(ctx, rule.CreatorID, rule.Platform)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cta pool: %w", err)
	}
	hashtagSets, err := r.store.ListHashtagSets(ctx, rule.CreatorID, rule.Platform)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hashtag pool: %w", err)
	}

	input := selection.Input{
		Captions:               captions,
		CTAs:                   ctas,
		HashtagSets:            hashtagSets,
		Platform:               rule.Platform,
		ComfortExplicitnessMax: rule.ComfortExplicitnessMax,
		CooldownSeconds:        rule.CooldownSeconds,
		ToneAllowlist:          rule.ToneAllowlist,
		PlatformLimits:         selection.PlatformLimits{MaxHashtags: rule.MaxHashtags},
		CurrentTimeISO:         nowISO,
		RevenueSplit:           selection.RevenueSplit{CreatorPct: rule.CreatorPct, PlatformPct: rule.PlatformPct},
	}

	started := time.Now()
	result := selection.RunAutopost(input)
	r.observeRun(rule.Platform, result, time.Since(started))

	defer func() {
		nextRun := now.Add(time.Duration(rule.CadenceMinutes) * time.Minute)
		if err := r.store.AdvanceRule(ctx, rule.ID, nextRun); err != nil {
			r.logger.WithError(err).WithField("rule_id", rule.ID).Error("Failed to advance rule schedule")
		}
	}()

	decision, err := r.buildDecision(rule, result)
	if err != nil {
		return nil, err
	}
	if err := r.store.InsertDecision(ctx, decision); err != nil {
		return nil, err
	}

	switch result.State {
	case selection.StateReady, selection.StatePartialReady:
		r.recordUsage(ctx, result, now)
		r.dispatchPost(ctx, rule, decision, result)
	case selection.StateBlocked, selection.StateError:
		r.alert(ctx, rule, result, nowISO)
	}

	r.publishEvent(rule, decision, now)

	r.logger.WithFields(logrus.Fields{
		"rule_id":     rule.ID,
		"creator_id":  rule.CreatorID,
		"platform":    rule.Platform,
		"state":       string(result.State),
		"decision_id": decision.ID,
	}).Info("Autopost run completed")

	return decision, nil
}

// buildDecision maps an executor result onto a decision row.
func (r *Runner) buildDecision(rule *models.Rule, result selection.Result) (*models.Decision, error) {
	diagnostics, err := toJSONB(result.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	decision := &models.Decision{
		RuleID:      &rule.ID,
		CreatorID:   rule.CreatorID,
		Platform:    rule.Platform,
		State:       string(result.State),
		Reason:      result.Reason,
		Diagnostics: diagnostics,
	}

	if result.Payload != nil {
		payload, err := toJSONB(result.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		decision.Payload = payload
	}

	if id := result.Diagnostics.Caption.SelectedID; id != "" {
		decision.CaptionID = &id
	}
	if result.Diagnostics.CTA != nil && result.Diagnostics.CTA.SelectedID != "" {
		id := result.Diagnostics.CTA.SelectedID
		decision.CTAID = &id
	}
	if result.Diagnostics.Hashtags != nil && result.Diagnostics.Hashtags.SelectedID != "" {
		id := result.Diagnostics.Hashtags.SelectedID
		decision.HashtagSetID = &id
	}
	return decision, nil
}

// recordUsage bumps times_used and last_used_at for every chosen candidate.
func (r *Runner) recordUsage(ctx context.Context, result selection.Result, now time.Time) {
	if id := result.Diagnostics.Caption.SelectedID; id != "" {
		if err := r.store.RecordCaptionUse(ctx, id, now); err != nil {
			r.logger.WithError(err).WithField("caption_id", id).Error("Failed to record caption use")
		}
	}
	if result.Diagnostics.CTA != nil && result.Diagnostics.CTA.SelectedID != "" {
		id := result.Diagnostics.CTA.SelectedID
		if err := r.store.RecordCTAUse(ctx, id, now); err != nil {
			r.logger.WithError(err).WithField("cta_id", id).Error("Failed to record cta use")
		}
	}
	if result.Diagnostics.Hashtags != nil && result.Diagnostics.Hashtags.SelectedID != "" {
		id := result.Diagnostics.Hashtags.SelectedID
		if err := r.store.RecordHashtagSetUse(ctx, id, now); err != nil {
			r.logger.WithError(err).WithField("hashtag_set_id", id).Error("Failed to record hashtag set use")
		}
	}
}

// dispatchPost hands the assembled payload to the platform adapter and
// attaches the receipt to the stored decision.
func (r *Runner) dispatchPost(ctx context.Context, rule *models.Rule, decision *models.Decision, result selection.Result) {
	if !r.dispatchEnabled || result.Payload == nil {
		return
	}

	publisher, err := dispatch.GetPublisher(rule.Platform, r.logger)
	if err != nil {
		r.observeDispatch(rule.Platform, "rejected")
		r.logger.WithError(err).WithField("platform", rule.Platform).Warn("No adapter for platform")
		return
	}

	post := dispatch.Post{
		CreatorID:   rule.CreatorID,
		Platform:    rule.Platform,
		CaptionText: result.Payload.CaptionText,
		CTAText:     result.Payload.CTAText,
		Hashtags:    result.Payload.Hashtags,
	}
	receipt, err := publisher.Publish(ctx, post)
	if err != nil {
		r.observeDispatch(rule.Platform, "rejected")
		r.logger.WithError(err).WithFields(logrus.Fields{
			"rule_id":  rule.ID,
			"platform": rule.Platform,
		}).Warn("Platform adapter rejected post")
		return
	}

	decision.PostRef = receipt.PostRef
	if err := r.store.SetDecisionPostRef(ctx, decision.ID, receipt.PostRef); err != nil {
		r.logger.WithError(err).WithField("decision_id", decision.ID).Error("Failed to store post_ref")
	}
	r.observeDispatch(rule.Platform, "accepted")
}

// alert notifies the operator webhook about a run that produced no post.
func (r *Runner) alert(ctx context.Context, rule *models.Rule, result selection.Result, nowISO string) {
	entry := r.logger.WithFields(logrus.Fields{
		"rule_id":    rule.ID,
		"creator_id": rule.CreatorID,
		"platform":   rule.Platform,
		"reason":     result.Reason,
	})
	if result.State == selection.StateError {
		entry.Error("Autopost run errored")
	} else {
		entry.Warn("Autopost run blocked")
	}

	if r.webhook == nil || !r.webhook.Enabled() {
		return
	}
	alert := alerts.Alert{
		RuleID:    rule.ID,
		CreatorID: rule.CreatorID,
		Platform:  rule.Platform,
		State:     string(result.State),
		Reason:    result.Reason,
		Timestamp: nowISO,
	}
	if err := r.webhook.Send(ctx, alert); err != nil {
		r.logger.WithError(err).WithField("rule_id", rule.ID).Warn("Failed to send autopost alert")
	}
}

// publishEvent emits the decision onto the event stream when configured.
func (r *Runner) publishEvent(rule *models.Rule, decision *models.Decision, now time.Time) {
	if r.producer == nil {
		return
	}
	event := &kafka.DecisionEvent{
		DecisionID: decision.ID,
		RuleID:     rule.ID,
		CreatorID:  rule.CreatorID,
		Platform:   rule.Platform,
		State:      decision.State,
		Reason:     decision.Reason,
		PostRef:    decision.PostRef,
		Timestamp:  now,
	}
	if decision.CaptionID != nil {
		event.CaptionID = *decision.CaptionID
	}
	if decision.CTAID != nil {
		event.CTAID = *decision.CTAID
	}
	if decision.HashtagSetID != nil {
		event.HashtagSetID = *decision.HashtagSetID
	}
	if err := r.producer.PublishDecisionEvent(event); err != nil {
		r.logger.WithError(err).WithField("decision_id", decision.ID).Warn("Failed to publish decision event")
	}
}

func (r *Runner) observeRun(platform string, result selection.Result, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	if r.metrics.SelectionRuns != nil {
		r.metrics.SelectionRuns.WithLabelValues(platform, string(result.State)).Inc()
	}
	if r.metrics.SelectionDuration != nil {
		r.metrics.SelectionDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
	}
	if r.metrics.SelectionRejections != nil {
		observeRejections(r.metrics.SelectionRejections, result.Diagnostics)
	}
}

func (r *Runner) observeDispatch(platform, status string) {
	if r.metrics == nil || r.metrics.Dispatches == nil {
		return
	}
	r.metrics.Dispatches.WithLabelValues(platform, status).Inc()
}

func observeRejections(rejections *prometheus.CounterVec, d selection.Diagnostics) {
	add := func(selector, stage string, n int) {
		if n > 0 {
			rejections.WithLabelValues(selector, stage).Add(float64(n))
		}
	}
	add("caption", "eligibility", d.Caption.RejectedEligibility)
	add("caption", "explicitness", d.Caption.RejectedExplicitness)
	add("caption", "cooldown", d.Caption.RejectedCooldown)
	add("caption", "tone", d.Caption.RejectedTone)
	if d.CTA != nil {
		add("cta", "eligibility", d.CTA.RejectedEligibility)
		add("cta", "explicitness", d.CTA.RejectedExplicitness)
		add("cta", "tone", d.CTA.RejectedTone)
	}
	if d.Hashtags != nil {
		add("hashtags", "eligibility", d.Hashtags.RejectedEligibility)
		add("hashtags", "explicitness", d.Hashtags.RejectedExplicitness)
		add("hashtags", "tone", d.Hashtags.RejectedTone)
	}
}

// toJSONB round-trips a typed value into the map shape the decision log
// stores, preserving the executor's exact JSON field names.
func toJSONB(v interface{}) (models.JSONB, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m models.JSONB
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
