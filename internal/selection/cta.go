package selection

import (
	"sort"
)

// SelectCTA filters and ranks candidate calls-to-action. CTA selection is
// optional: exhausting the pool at any stage (or an unparsable nowISO)
// yields a none-result carrying diagnostics, never a hard failure.
// Explicitness filtering is ceiling-style: a candidate is rejected only if
// it declares a max_explicitness below the accompanying caption's level;
// candidates with no declared ceiling always pass.
func SelectCTA(pool []CTARecord, platform string, toneAllowlist []string, explicitnessLevel *int, nowISO string) CTAResult {
	diags := CTADiagnostics{InputCount: len(pool)}

	if _, ok := parseTimestamp(nowISO); !ok {
		return CTAResult{Diagnostics: diags}
	}

	var survivors []CTARecord
	for _, c := range pool {
		if !c.Approved || !c.Active || c.Platform != platform {
			diags.RejectedEligibility++
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		return CTAResult{Diagnostics: diags}
	}

	next := survivors[:0]
	for _, c := range survivors {
		if belowCeiling(c.MaxExplicitness, explicitnessLevel) {
			diags.RejectedExplicitness++
			continue
		}
		next = append(next, c)
	}
	survivors = next
	if len(survivors) == 0 {
		return CTAResult{Diagnostics: diags}
	}

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
			return CTAResult{Diagnostics: diags}
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
	return CTAResult{CTA: &winner, Diagnostics: diags}
}

// belowCeiling reports whether a declared max_explicitness ceiling rejects
// the caller's explicitness level. A missing ceiling or missing level
// never rejects.
func belowCeiling(maxExplicitness, explicitnessLevel *int) bool {
	return maxExplicitness != nil && explicitnessLevel != nil && *maxExplicitness < *explicitnessLevel
}
