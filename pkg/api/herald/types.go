// Package herald defines the request and response types of the Herald
// autopost API.
package herald

import (
	"time"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/api/common"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

// ErrorResponse represents a standard error response from Herald
type ErrorResponse = common.ErrorResponse

// SuccessResponse represents a standard success acknowledgement from Herald
type SuccessResponse = common.SuccessResponse

// CreateCaptionRequest represents a request to add a caption candidate
type CreateCaptionRequest struct {
	Platform          string   `json:"platform" binding:"required"`
	CaptionText       string   `json:"caption_text" binding:"required"`
	ExplicitnessLevel int      `json:"explicitness_level"`
	Tone              []string `json:"tone"`
	Approved          bool     `json:"approved"`
	Active            *bool    `json:"active"`
}

// CreateCTARequest represents a request to add a call-to-action candidate
type CreateCTARequest struct {
	Platform        string   `json:"platform" binding:"required"`
	CTAText         string   `json:"cta_text" binding:"required"`
	MaxExplicitness *int     `json:"max_explicitness"`
	Tone            []string `json:"tone"`
	Approved        bool     `json:"approved"`
	Active          *bool    `json:"active"`
}

// CreateHashtagSetRequest represents a request to add a hashtag-set candidate
type CreateHashtagSetRequest struct {
	Platform        string   `json:"platform" binding:"required"`
	Hashtags        []string `json:"hashtags" binding:"required"`
	MaxExplicitness *int     `json:"max_explicitness"`
	Tone            []string `json:"tone"`
	Approved        bool     `json:"approved"`
	Active          *bool    `json:"active"`
}

// ApprovalRequest represents a request to approve or revoke a candidate
type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// CreateRuleRequest represents a request to create an autopost rule.
// Omitted limits fall back to the platform defaults.
type CreateRuleRequest struct {
	Platform               string     `json:"platform" binding:"required"`
	CadenceMinutes         int        `json:"cadence_minutes"`
	ComfortExplicitnessMax int        `json:"comfort_explicitness_max"`
	CooldownSeconds        int64      `json:"cooldown_seconds"`
	ToneAllowlist          []string   `json:"tone_allowlist"`
	MaxHashtags            *int       `json:"max_hashtags"`
	CreatorPct             *float64   `json:"creator_pct"`
	PlatformPct            *float64   `json:"platform_pct"`
	NextRunAt              *time.Time `json:"next_run_at"`
	Active                 *bool      `json:"active"`
}

// UpdateRuleRequest represents a partial update to an autopost rule. Only
// the fields present in the request change.
type UpdateRuleRequest struct {
	Platform               *string   `json:"platform"`
	CadenceMinutes         *int      `json:"cadence_minutes"`
	ComfortExplicitnessMax *int      `json:"comfort_explicitness_max"`
	CooldownSeconds        *int64    `json:"cooldown_seconds"`
	ToneAllowlist          *[]string `json:"tone_allowlist"`
	MaxHashtags            *int      `json:"max_hashtags"`
	CreatorPct             *float64  `json:"creator_pct"`
	PlatformPct            *float64  `json:"platform_pct"`
	Active                 *bool     `json:"active"`
}

// ListCaptionsResponse represents a creator's caption candidates
type ListCaptionsResponse struct {
	Captions []models.Caption `json:"captions"`
	Count    int              `json:"count"`
}

// ListCTAsResponse represents a creator's call-to-action candidates
type ListCTAsResponse struct {
	CTAs  []models.CTA `json:"ctas"`
	Count int          `json:"count"`
}

// ListHashtagSetsResponse represents a creator's hashtag-set candidates
type ListHashtagSetsResponse struct {
	HashtagSets []models.HashtagSet `json:"hashtag_sets"`
	Count       int                 `json:"count"`
}

// ListRulesResponse represents a creator's autopost rules
type ListRulesResponse struct {
	Rules []models.Rule `json:"rules"`
	Count int           `json:"count"`
}

// ListDecisionsResponse represents a creator's recent autopost decisions
type ListDecisionsResponse struct {
	Decisions []models.Decision `json:"decisions"`
	Count     int               `json:"count"`
}

// RuleResponse represents a single autopost rule
type RuleResponse = models.Rule

// DecisionResponse represents a single persisted autopost decision
type DecisionResponse = models.Decision
