// Package selection implements the autopost content-selection executor:
// pure, deterministic selection of a caption, an optional call-to-action,
// and an optional hashtag set for a scheduled post, combined into a
// tri-state readiness verdict. All functions here are side-effect free;
// candidate pools are read-only snapshots supplied by the caller.
package selection

// State is the executor's terminal readiness verdict.
type State string

const (
	StateReady        State = "READY"
	StatePartialReady State = "PARTIAL_READY"
	StateBlocked      State = "BLOCKED"
	StateError        State = "ERROR"
)

// FailureCode identifies why caption selection failed.
type FailureCode string

const (
	CodeNoEligibleCaptions   FailureCode = "NO_ELIGIBLE_CAPTIONS"
	CodeDeterminismViolation FailureCode = "DETERMINISM_VIOLATION"
)

// CaptionRecord is a candidate caption. Records are immutable value
// snapshots; the selectors never mutate them.
type CaptionRecord struct {
	ID                string   `json:"id"`
	Approved          bool     `json:"approved"`
	Active            bool     `json:"active"`
	Platform          string   `json:"platform"`
	Tone              []string `json:"tone,omitempty"`
	TimesUsed         int      `json:"times_used"`
	LastUsedAt        *string  `json:"last_used_at"`
	CaptionText       string   `json:"caption_text"`
	ExplicitnessLevel int      `json:"explicitness_level"`
}

// CTARecord is a candidate call-to-action. MaxExplicitness is an optional
// ceiling: when present the CTA only accompanies captions at or below it.
type CTARecord struct {
	ID              string   `json:"id"`
	Approved        bool     `json:"approved"`
	Active          bool     `json:"active"`
	Platform        string   `json:"platform"`
	Tone            []string `json:"tone,omitempty"`
	TimesUsed       int      `json:"times_used"`
	LastUsedAt      *string  `json:"last_used_at"`
	CTAText         string   `json:"cta_text"`
	MaxExplicitness *int     `json:"max_explicitness"`
}

// HashtagSetRecord is a candidate hashtag set. Hashtag order is the
// priority order under truncation.
type HashtagSetRecord struct {
	ID              string   `json:"id"`
	Approved        bool     `json:"approved"`
	Active          bool     `json:"active"`
	Platform        string   `json:"platform"`
	Tone            []string `json:"tone,omitempty"`
	TimesUsed       int      `json:"times_used"`
	LastUsedAt      *string  `json:"last_used_at"`
	Hashtags        []string `json:"hashtags"`
	MaxExplicitness *int     `json:"max_explicitness"`
}

// PlatformLimits carries per-platform posting caps.
type PlatformLimits struct {
	MaxHashtags int `json:"max_hashtags"`
}

// RevenueSplit is opaque pass-through data for downstream accounting.
// The executor never validates or computes it.
type RevenueSplit struct {
	CreatorPct  float64 `json:"creator_pct"`
	PlatformPct float64 `json:"platform_pct"`
}

// Input is the single argument to RunAutopost.
type Input struct {
	Captions               []CaptionRecord    `json:"captions"`
	CTAs                   []CTARecord        `json:"ctas"`
	HashtagSets            []HashtagSetRecord `json:"hashtag_sets"`
	Platform               string             `json:"platform"`
	ComfortExplicitnessMax int                `json:"comfort_explicitness_max"`
	CooldownSeconds        int64              `json:"cooldown_seconds"`
	ToneAllowlist          []string           `json:"tone_allowlist,omitempty"`
	PlatformLimits         PlatformLimits     `json:"platform_limits"`
	CurrentTimeISO         string             `json:"current_time_iso"`
	RevenueSplit           RevenueSplit       `json:"revenue_split"`
}

// CaptionDiagnostics tallies per-stage rejections during caption selection.
// Counts accumulate for every stage that ran, whether or not that stage was
// the one that emptied the pool.
type CaptionDiagnostics struct {
	InputCount           int    `json:"input_count"`
	RejectedEligibility  int    `json:"rejected_eligibility"`
	RejectedExplicitness int    `json:"rejected_explicitness"`
	RejectedCooldown     int    `json:"rejected_cooldown"`
	RejectedTone         int    `json:"rejected_tone"`
	SelectedID           string `json:"selected_id,omitempty"`
}

// CTADiagnostics tallies per-stage rejections during CTA selection.
type CTADiagnostics struct {
	InputCount           int    `json:"input_count"`
	RejectedEligibility  int    `json:"rejected_eligibility"`
	RejectedExplicitness int    `json:"rejected_explicitness"`
	RejectedTone         int    `json:"rejected_tone"`
	SelectedID           string `json:"selected_id,omitempty"`
}

// HashtagDiagnostics tallies per-stage rejections during hashtag-set
// selection and reports whether the winning set was truncated.
type HashtagDiagnostics struct {
	InputCount           int    `json:"input_count"`
	RejectedEligibility  int    `json:"rejected_eligibility"`
	RejectedExplicitness int    `json:"rejected_explicitness"`
	RejectedTone         int    `json:"rejected_tone"`
	SelectedID           string `json:"selected_id,omitempty"`
	Truncated            bool   `json:"truncated"`
}

// CaptionResult is the discriminated outcome of SelectCaption: Caption is
// set on success, Code on failure. Diagnostics are populated either way.
type CaptionResult struct {
	Caption     *CaptionRecord
	Code        FailureCode
	Diagnostics CaptionDiagnostics
}

// OK reports whether a caption was selected.
func (r CaptionResult) OK() bool { return r.Caption != nil }

// CTAResult is the outcome of SelectCTA. A nil CTA is the none-result;
// CTA selection has no failure mode.
type CTAResult struct {
	CTA         *CTARecord
	Diagnostics CTADiagnostics
}

// OK reports whether a CTA was selected.
func (r CTAResult) OK() bool { return r.CTA != nil }

// HashtagResult is the outcome of SelectHashtags. Hashtags is nil for the
// none-result; on success it holds the (possibly truncated) tag list and
// SetID identifies the winning set in the input pool.
type HashtagResult struct {
	Hashtags    []string
	SetID       string
	Diagnostics HashtagDiagnostics
}

// OK reports whether a hashtag set was selected.
func (r HashtagResult) OK() bool { return r.Hashtags != nil }

// Payload is the assembled post content for READY/PARTIAL_READY results.
// CTAText and Hashtags are null for whichever optional slot resolved to
// none.
type Payload struct {
	CaptionText  string       `json:"caption_text"`
	CTAText      *string      `json:"cta_text"`
	Hashtags     []string     `json:"hashtags"`
	Platform     string       `json:"platform"`
	RevenueSplit RevenueSplit `json:"revenue_split"`
}

// Diagnostics nests each selector's diagnostics for one executor run.
// CTA/Hashtags stay nil when caption selection blocked the run before
// the optional selectors executed.
type Diagnostics struct {
	Caption   CaptionDiagnostics  `json:"caption"`
	CTA       *CTADiagnostics     `json:"cta,omitempty"`
	Hashtags  *HashtagDiagnostics `json:"hashtags,omitempty"`
	Platform  string              `json:"platform"`
	Timestamp string              `json:"timestamp"`
}

// Result is the executor's verdict, discriminated on State. Payload is set
// for READY/PARTIAL_READY; Reason for BLOCKED/ERROR.
type Result struct {
	State       State       `json:"state"`
	Payload     *Payload    `json:"payload,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics"`
}
