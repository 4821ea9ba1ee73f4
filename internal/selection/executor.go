package selection

import (
	"fmt"
)

// selectCaptionFn is swapped in tests to exercise the recovered-failure arm.
var selectCaptionFn = SelectCaption

// RunAutopost orchestrates the three selectors in fixed order: caption,
// then CTA, then hashtags. The order is required because CTA and hashtag
// ceiling filtering depend on the already-selected caption's explicitness
// level. Caption failure is terminal (BLOCKED, carrying the failure code
// as reason); optional selectors resolving to none degrade the state to
// PARTIAL_READY with null slots in the payload. A selector breaking its
// never-panics contract is caught and surfaced as ERROR so callers always
// receive a structured verdict.
func RunAutopost(input Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				State:  StateError,
				Reason: fmt.Sprintf("selector panic: %v", r),
				Diagnostics: Diagnostics{
					Platform:  input.Platform,
					Timestamp: input.CurrentTimeISO,
				},
			}
		}
	}()

	capRes := selectCaptionFn(input.Captions, input.Platform, input.ComfortExplicitnessMax, input.CooldownSeconds, input.ToneAllowlist, input.CurrentTimeISO)

	diags := Diagnostics{
		Caption:   capRes.Diagnostics,
		Platform:  input.Platform,
		Timestamp: input.CurrentTimeISO,
	}

	if !capRes.OK() {
		return Result{
			State:       StateBlocked,
			Reason:      string(capRes.Code),
			Diagnostics: diags,
		}
	}

	level := capRes.Caption.ExplicitnessLevel

	ctaRes := SelectCTA(input.CTAs, input.Platform, input.ToneAllowlist, &level, input.CurrentTimeISO)
	diags.CTA = &ctaRes.Diagnostics

	hashRes := SelectHashtags(input.HashtagSets, input.Platform, input.PlatformLimits, input.ToneAllowlist, &level, input.CurrentTimeISO)
	diags.Hashtags = &hashRes.Diagnostics

	payload := Payload{
		CaptionText:  capRes.Caption.CaptionText,
		Platform:     input.Platform,
		RevenueSplit: input.RevenueSplit,
	}

	state := StateReady
	if ctaRes.OK() {
		payload.CTAText = &ctaRes.CTA.CTAText
	} else {
		state = StatePartialReady
	}
	if hashRes.OK() {
		payload.Hashtags = hashRes.Hashtags
	} else {
		state = StatePartialReady
	}

	return Result{
		State:       state,
		Payload:     &payload,
		Diagnostics: diags,
	}
}
