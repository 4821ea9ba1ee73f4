package selection

import (
	"sort"
	"time"
)

// SelectCaption filters and ranks candidate captions, returning the single
// deterministic winner. The filter pipeline runs in fixed order over the
// survivors of the previous stage: eligibility (approved, active, platform
// match), explicitness max, cooldown, tone allow-list, then the
// deterministic sort. An empty pool after any stage fails with
// NO_ELIGIBLE_CAPTIONS; an unparsable nowISO fails immediately with
// DETERMINISM_VIOLATION. This function never panics for expected
// conditions; all failure is carried in the returned result.
func SelectCaption(pool []CaptionRecord, platform string, comfortExplicitnessMax int, cooldownSeconds int64, toneAllowlist []string, nowISO string) CaptionResult {
	diags := CaptionDiagnostics{InputCount: len(pool)}

	now, ok := parseTimestamp(nowISO)
	if !ok {
		return CaptionResult{Code: CodeDeterminismViolation, Diagnostics: diags}
	}

	// Eligibility: approved, active, exact platform match.
	var survivors []CaptionRecord
	for _, c := range pool {
		if !c.Approved || !c.Active || c.Platform != platform {
			diags.RejectedEligibility++
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		return CaptionResult{Code: CodeNoEligibleCaptions, Diagnostics: diags}
	}

	// Explicitness: hard max, no ceiling concept for captions.
	next := survivors[:0]
	for _, c := range survivors {
		if c.ExplicitnessLevel > comfortExplicitnessMax {
			diags.RejectedExplicitness++
			continue
		}
		next = append(next, c)
	}
	survivors = next
	if len(survivors) == 0 {
		return CaptionResult{Code: CodeNoEligibleCaptions, Diagnostics: diags}
	}

	// Cooldown: never-used always passes; otherwise the elapsed time since
	// last use must be at least cooldownSeconds (boundary inclusive). A
	// last_used_at that fails to parse cannot prove the cooldown elapsed,
	// so it is rejected.
	cooldown := time.Duration(cooldownSeconds) * time.Second
	next = survivors[:0]
	for _, c := range survivors {
		if !cooldownElapsed(c.LastUsedAt, now, cooldown) {
			diags.RejectedCooldown++
			continue
		}
		next = append(next, c)
	}
	survivors = next
	if len(survivors) == 0 {
		return CaptionResult{Code: CodeNoEligibleCaptions, Diagnostics: diags}
	}

	// Tone: skipped entirely when no allow-list is supplied.
	if len(toneAllowlist) > 0 {
		next = survivors[:0]
		for _, c := range survivors {
			if !toneMatches(c.Tone, toneAllowlist) {
				diags.RejectedTone++
				continue
			}
			next = append(next, c)
		}
		survivors = next
		if len(survivors) == 0 {
			return CaptionResult{Code: CodeNoEligibleCaptions, Diagnostics: diags}
		}
	}

	sort.Slice(survivors, func(i, j int) bool {
		return lessRank(
			makeRankKey(survivors[i].ID, survivors[i].TimesUsed, survivors[i].LastUsedAt),
			makeRankKey(survivors[j].ID, survivors[j].TimesUsed, survivors[j].LastUsedAt),
		)
	})

	winner := survivors[0]
	diags.SelectedID = winner.ID
	return CaptionResult{Caption: &winner, Diagnostics: diags}
}

func cooldownElapsed(lastUsedAt *string, now time.Time, cooldown time.Duration) bool {
	if lastUsedAt == nil {
		return true
	}
	last, ok := parseTimestamp(*lastUsedAt)
	if !ok {
		return false
	}
	return now.Sub(last) >= cooldown
}
