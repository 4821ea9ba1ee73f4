package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// stubPublisher carries what every stub adapter shares: base validation,
// receipt minting, and acceptance logging.
type stubPublisher struct {
	name   string
	logger *logrus.Logger
}

func (p *stubPublisher) GetName() string {
	return p.name
}

func (p *stubPublisher) validateBase(post Post) error {
	if post.Platform != p.name {
		return fmt.Errorf("%w: post targets %q, adapter serves %q", ErrUnknownPlatform, post.Platform, p.name)
	}
	if strings.TrimSpace(post.CaptionText) == "" {
		return ErrEmptyCaption
	}
	if limit := DefaultMaxHashtags(p.name); len(post.Hashtags) > limit {
		return fmt.Errorf("%w: %d > %d", ErrTooManyHashtags, len(post.Hashtags), limit)
	}
	return nil
}

func (p *stubPublisher) mint(post Post) *Receipt {
	receipt := &Receipt{
		PostRef:    uuid.New().String(),
		Platform:   p.name,
		AcceptedAt: time.Now().UTC(),
	}
	p.logger.WithFields(logrus.Fields{
		"platform":   p.name,
		"creator_id": post.CreatorID,
		"post_ref":   receipt.PostRef,
		"hashtags":   len(post.Hashtags),
	}).Info("Post accepted by platform adapter")
	return receipt
}

// renderPostText joins caption, CTA and hashtags the way the post would read
// on platforms that publish them as one text body.
func renderPostText(post Post) string {
	parts := []string{post.CaptionText}
	if post.CTAText != nil && *post.CTAText != "" {
		parts = append(parts, *post.CTAText)
	}
	if len(post.Hashtags) > 0 {
		parts = append(parts, strings.Join(post.Hashtags, " "))
	}
	return strings.Join(parts, " ")
}
