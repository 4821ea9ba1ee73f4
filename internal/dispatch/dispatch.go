// Package dispatch routes assembled posts to platform adapters. The adapters
// are validate-and-acknowledge stubs: they enforce each platform's composition
// limits and mint a receipt, but never call a real platform API.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Supported platforms.
const (
	PlatformFanvue    = "fanvue"
	PlatformInstagram = "instagram"
	PlatformX         = "x"
	PlatformReddit    = "reddit"
)

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrEmptyCaption    = errors.New("caption text is empty")
	ErrTooManyHashtags = errors.New("hashtag count exceeds platform cap")
	ErrCaptionTooLong  = errors.New("caption exceeds platform length limit")
)

// Post is the assembled content handed to a platform adapter.
type Post struct {
	CreatorID   string   `json:"creator_id"`
	Platform    string   `json:"platform"`
	CaptionText string   `json:"caption_text"`
	CTAText     *string  `json:"cta_text"`
	Hashtags    []string `json:"hashtags"`
}

// Receipt acknowledges an accepted post.
type Receipt struct {
	PostRef    string    `json:"post_ref"`
	Platform   string    `json:"platform"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Publisher validates and accepts posts for one platform.
type Publisher interface {
	// Validate checks a post against the platform's composition limits.
	Validate(post Post) error

	// Publish accepts a validated post and returns a receipt.
	Publish(ctx context.Context, post Post) (*Receipt, error)

	// GetName returns the platform name the publisher serves.
	GetName() string
}

// platformMaxHashtags maps each supported platform to the hashtag cap used
// when a rule does not set its own.
var platformMaxHashtags = map[string]int{
	PlatformFanvue:    30,
	PlatformInstagram: 30,
	PlatformX:         10,
	PlatformReddit:    5,
}

// GetPublisher returns the adapter for a platform.
func GetPublisher(platform string, logger *logrus.Logger) (Publisher, error) {
	switch platform {
	case PlatformFanvue:
		return NewFanvuePublisher(logger), nil
	case PlatformInstagram:
		return NewInstagramPublisher(logger), nil
	case PlatformX:
		return NewXPublisher(logger), nil
	case PlatformReddit:
		return NewRedditPublisher(logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
}

// DefaultMaxHashtags returns the platform's hashtag cap, falling back to a
// conservative default for platforms added to rules before adapters exist.
func DefaultMaxHashtags(platform string) int {
	if limit, ok := platformMaxHashtags[platform]; ok {
		return limit
	}
	return 10
}

// ListPlatforms returns all supported platform names, sorted.
func ListPlatforms() []string {
	platforms := make([]string, 0, len(platformMaxHashtags))
	for name := range platformMaxHashtags {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)
	return platforms
}
