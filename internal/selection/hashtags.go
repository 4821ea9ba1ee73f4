package selection

import (
	"sort"
)

// SelectHashtags filters and ranks candidate hashtag sets with the same
// optional pipeline as SelectCTA, then applies the platform cap to the
// winner: a set longer than limits.MaxHashtags is truncated to its first
// entries in original order. Insertion order is the priority order; the
// list is never reordered before truncating.
func SelectHashtags(pool []HashtagSetRecord, platform string, limits PlatformLimits, toneAllowlist []string, explicitnessLevel *int, nowISO string) HashtagResult {
	diags := HashtagDiagnostics{InputCount: len(pool)}

	if _, ok := parseTimestamp(nowISO); !ok {
		return HashtagResult{Diagnostics: diags}
	}

	var survivors []HashtagSetRecord
	for _, s := range pool {
		if !s.Approved || !s.Active || s.Platform != platform {
			diags.RejectedEligibility++
			continue
		}
		survivors = append(survivors, s)
	}
	if len(survivors) == 0 {
		return HashtagResult{Diagnostics: diags}
	}

	next := survivors[:0]
	for _, s := range survivors {
		if belowCeiling(s.MaxExplicitness, explicitnessLevel) {
			diags.RejectedExplicitness++
			continue
		}
		next = append(next, s)
	}
	survivors = next
	if len(survivors) == 0 {
		return HashtagResult{Diagnostics: diags}
	}

	if len(toneAllowlist) > 0 {
		next = survivors[:0]
		for _, s := range survivors {
			if !toneMatches(s.Tone, toneAllowlist) {
				diags.RejectedTone++
				continue
			}
			next = append(next, s)
		}
		survivors = next
		if len(survivors) == 0 {
			return HashtagResult{Diagnostics: diags}
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

	limit := limits.MaxHashtags
	if limit < 0 {
		limit = 0
	}
	tags := winner.Hashtags
	if len(tags) > limit {
		tags = tags[:limit]
		diags.Truncated = true
	}
	out := make([]string, len(tags))
	copy(out, tags)

	return HashtagResult{Hashtags: out, SetID: winner.ID, Diagnostics: diags}
}
