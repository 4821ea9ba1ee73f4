package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"
)

// FanvuePublisher accepts posts for the creator's own Fanvue page. Fanvue
// imposes no composition limits beyond the base checks.
type FanvuePublisher struct {
	stubPublisher
}

func NewFanvuePublisher(logger *logrus.Logger) *FanvuePublisher {
	return &FanvuePublisher{stubPublisher{name: PlatformFanvue, logger: logger}}
}

func (p *FanvuePublisher) Validate(post Post) error {
	return p.validateBase(post)
}

func (p *FanvuePublisher) Publish(ctx context.Context, post Post) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(post); err != nil {
		return nil, err
	}
	return p.mint(post), nil
}
