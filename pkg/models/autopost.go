package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONB is a custom type for handling JSONB fields
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Caption represents a stored caption candidate (creator-scoped)
type Caption struct {
	ID                string     `json:"id"`
	CreatorID         string     `json:"creator_id"`
	Platform          string     `json:"platform"`
	CaptionText       string     `json:"caption_text"`
	ExplicitnessLevel int        `json:"explicitness_level"`
	Tone              []string   `json:"tone"`
	Approved          bool       `json:"approved"`
	Active            bool       `json:"active"`
	TimesUsed         int        `json:"times_used"`
	LastUsedAt        *time.Time `json:"last_used_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CTA represents a stored call-to-action candidate (creator-scoped)
type CTA struct {
	ID              string     `json:"id"`
	CreatorID       string     `json:"creator_id"`
	Platform        string     `json:"platform"`
	CTAText         string     `json:"cta_text"`
	MaxExplicitness *int       `json:"max_explicitness"`
	Tone            []string   `json:"tone"`
	Approved        bool       `json:"approved"`
	Active          bool       `json:"active"`
	TimesUsed       int        `json:"times_used"`
	LastUsedAt      *time.Time `json:"last_used_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HashtagSet represents a stored hashtag-set candidate (creator-scoped)
type HashtagSet struct {
	ID              string     `json:"id"`
	CreatorID       string     `json:"creator_id"`
	Platform        string     `json:"platform"`
	Hashtags        []string   `json:"hashtags"`
	MaxExplicitness *int       `json:"max_explicitness"`
	Tone            []string   `json:"tone"`
	Approved        bool       `json:"approved"`
	Active          bool       `json:"active"`
	TimesUsed       int        `json:"times_used"`
	LastUsedAt      *time.Time `json:"last_used_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Rule represents a scheduled autopost rule: how often to post for a
// creator on a platform and under which selection constraints
type Rule struct {
	ID                     string    `json:"id"`
	CreatorID              string    `json:"creator_id"`
	Platform               string    `json:"platform"`
	CadenceMinutes         int       `json:"cadence_minutes"`
	NextRunAt              time.Time `json:"next_run_at"`
	ComfortExplicitnessMax int       `json:"comfort_explicitness_max"`
	CooldownSeconds        int64     `json:"cooldown_seconds"`
	ToneAllowlist          []string  `json:"tone_allowlist"`
	MaxHashtags            int       `json:"max_hashtags"`
	CreatorPct             float64   `json:"creator_pct"`
	PlatformPct            float64   `json:"platform_pct"`
	Active                 bool      `json:"active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Decision represents one persisted executor verdict
type Decision struct {
	ID           string    `json:"id"`
	RuleID       *string   `json:"rule_id,omitempty"`
	CreatorID    string    `json:"creator_id"`
	Platform     string    `json:"platform"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	CaptionID    *string   `json:"caption_id,omitempty"`
	CTAID        *string   `json:"cta_id,omitempty"`
	HashtagSetID *string   `json:"hashtag_set_id,omitempty"`
	Payload      JSONB     `json:"payload,omitempty"`
	Diagnostics  JSONB     `json:"diagnostics,omitempty"`
	PostRef      string    `json:"post_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
