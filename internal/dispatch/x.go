package dispatch

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// xMaxPostRunes caps the whole rendered post, not just the caption, since X
// publishes caption, CTA and hashtags as one text body.
const xMaxPostRunes = 280

// XPublisher accepts posts for X promo accounts.
type XPublisher struct {
	stubPublisher
}

func NewXPublisher(logger *logrus.Logger) *XPublisher {
	return &XPublisher{stubPublisher{name: PlatformX, logger: logger}}
}

func (p *XPublisher) Validate(post Post) error {
	if err := p.validateBase(post); err != nil {
		return err
	}
	if runes := utf8.RuneCountInString(renderPostText(post)); runes > xMaxPostRunes {
		return fmt.Errorf("%w: %d > %d runes", ErrCaptionTooLong, runes, xMaxPostRunes)
	}
	return nil
}

func (p *XPublisher) Publish(ctx context.Context, post Post) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(post); err != nil {
		return nil, err
	}
	return p.mint(post), nil
}
