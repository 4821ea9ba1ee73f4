package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
)

func testPost(platform string) Post {
	cta := "subscribe for more"
	return Post{
		CreatorID:   "creator-1",
		Platform:    platform,
		CaptionText: "new drop tonight",
		CTAText:     &cta,
		Hashtags:    []string{"#new", "#tonight"},
	}
}

func TestGetPublisherKnownPlatforms(t *testing.T) {
	logger := logging.NewLogger()
	for _, platform := range ListPlatforms() {
		publisher, err := GetPublisher(platform, logger)
		if err != nil {
			t.Fatalf("GetPublisher(%q) returned error: %v", platform, err)
		}
		if publisher.GetName() != platform {
			t.Errorf("expected adapter name %q, got %q", platform, publisher.GetName())
		}
	}
}

func TestGetPublisherUnknownPlatform(t *testing.T) {
	_, err := GetPublisher("tiktok", logging.NewLogger())
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestValidateRejectsEmptyCaption(t *testing.T) {
	publisher := NewFanvuePublisher(logging.NewLogger())
	post := testPost(PlatformFanvue)
	post.CaptionText = "   "
	if err := publisher.Validate(post); !errors.Is(err, ErrEmptyCaption) {
		t.Fatalf("expected ErrEmptyCaption, got %v", err)
	}
}

func TestValidateRejectsPlatformMismatch(t *testing.T) {
	publisher := NewFanvuePublisher(logging.NewLogger())
	if err := publisher.Validate(testPost(PlatformReddit)); !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform for mismatched post, got %v", err)
	}
}

func TestValidateRejectsTooManyHashtags(t *testing.T) {
	publisher := NewRedditPublisher(logging.NewLogger())
	post := testPost(PlatformReddit)
	post.Hashtags = []string{"#a", "#b", "#c", "#d", "#e", "#f"}
	if err := publisher.Validate(post); !errors.Is(err, ErrTooManyHashtags) {
		t.Fatalf("expected ErrTooManyHashtags, got %v", err)
	}
}

func TestXValidateCountsWholeRenderedPost(t *testing.T) {
	publisher := NewXPublisher(logging.NewLogger())
	post := testPost(PlatformX)
	post.CaptionText = strings.Repeat("a", 270)
	// Caption alone fits, caption plus CTA and hashtags does not.
	if err := publisher.Validate(post); !errors.Is(err, ErrCaptionTooLong) {
		t.Fatalf("expected ErrCaptionTooLong for rendered post over 280 runes, got %v", err)
	}

	post.CTAText = nil
	post.Hashtags = nil
	if err := publisher.Validate(post); err != nil {
		t.Fatalf("expected bare 270-rune caption to pass, got %v", err)
	}
}

func TestInstagramValidateCaptionLimit(t *testing.T) {
	publisher := NewInstagramPublisher(logging.NewLogger())
	post := testPost(PlatformInstagram)
	post.CaptionText = strings.Repeat("a", 2201)
	if err := publisher.Validate(post); !errors.Is(err, ErrCaptionTooLong) {
		t.Fatalf("expected ErrCaptionTooLong, got %v", err)
	}
}

func TestPublishMintsReceipt(t *testing.T) {
	publisher := NewFanvuePublisher(logging.NewLogger())
	receipt, err := publisher.Publish(context.Background(), testPost(PlatformFanvue))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if _, err := uuid.Parse(receipt.PostRef); err != nil {
		t.Errorf("expected uuid post_ref, got %q", receipt.PostRef)
	}
	if receipt.Platform != PlatformFanvue {
		t.Errorf("expected platform fanvue, got %q", receipt.Platform)
	}
	if receipt.AcceptedAt.IsZero() {
		t.Error("expected accepted_at to be set")
	}
}

func TestPublishRejectsInvalidPost(t *testing.T) {
	publisher := NewFanvuePublisher(logging.NewLogger())
	post := testPost(PlatformFanvue)
	post.CaptionText = ""
	if _, err := publisher.Publish(context.Background(), post); !errors.Is(err, ErrEmptyCaption) {
		t.Fatalf("expected ErrEmptyCaption from Publish, got %v", err)
	}
}

func TestPublishHonorsCancelledContext(t *testing.T) {
	publisher := NewFanvuePublisher(logging.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := publisher.Publish(ctx, testPost(PlatformFanvue)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultMaxHashtags(t *testing.T) {
	if got := DefaultMaxHashtags(PlatformInstagram); got != 30 {
		t.Errorf("expected instagram cap 30, got %d", got)
	}
	if got := DefaultMaxHashtags("somewhere-new"); got != 10 {
		t.Errorf("expected fallback cap 10, got %d", got)
	}
}
