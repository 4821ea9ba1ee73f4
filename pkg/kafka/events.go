package kafka

import (
	"time"
)

// DecisionEvent represents a single autopost decision outcome
type DecisionEvent struct {
	DecisionID   string    `json:"decision_id"`
	RuleID       string    `json:"rule_id,omitempty"`
	CreatorID    string    `json:"creator_id,omitempty"`
	Platform     string    `json:"platform"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	CaptionID    string    `json:"caption_id,omitempty"`
	CTAID        string    `json:"cta_id,omitempty"`
	HashtagSetID string    `json:"hashtag_set_id,omitempty"`
	PostRef      string    `json:"post_ref,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
