package dispatch

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// instagramMaxCaptionRunes is Instagram's caption length cap.
const instagramMaxCaptionRunes = 2200

// InstagramPublisher accepts posts for Instagram promo accounts.
type InstagramPublisher struct {
	stubPublisher
}

func NewInstagramPublisher(logger *logrus.Logger) *InstagramPublisher {
	return &InstagramPublisher{stubPublisher{name: PlatformInstagram, logger: logger}}
}

func (p *InstagramPublisher) Validate(post Post) error {
	if err := p.validateBase(post); err != nil {
		return err
	}
	if runes := utf8.RuneCountInString(post.CaptionText); runes > instagramMaxCaptionRunes {
		return fmt.Errorf("%w: %d > %d runes", ErrCaptionTooLong, runes, instagramMaxCaptionRunes)
	}
	return nil
}

func (p *InstagramPublisher) Publish(ctx context.Context, post Post) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(post); err != nil {
		return nil, err
	}
	return p.mint(post), nil
}
