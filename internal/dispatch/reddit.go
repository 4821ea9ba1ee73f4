package dispatch

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// redditMaxTitleRunes is Reddit's title length cap; the caption doubles as
// the title in the stub.
const redditMaxTitleRunes = 300

// RedditPublisher accepts posts for subreddit promo threads.
type RedditPublisher struct {
	stubPublisher
}

func NewRedditPublisher(logger *logrus.Logger) *RedditPublisher {
	return &RedditPublisher{stubPublisher{name: PlatformReddit, logger: logger}}
}

func (p *RedditPublisher) Validate(post Post) error {
	if err := p.validateBase(post); err != nil {
		return err
	}
	if runes := utf8.RuneCountInString(post.CaptionText); runes > redditMaxTitleRunes {
		return fmt.Errorf("%w: %d > %d runes", ErrCaptionTooLong, runes, redditMaxTitleRunes)
	}
	return nil
}

func (p *RedditPublisher) Publish(ctx context.Context, post Post) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(post); err != nil {
		return nil, err
	}
	return p.mint(post), nil
}
