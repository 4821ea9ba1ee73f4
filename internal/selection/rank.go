package selection

import (
	"time"
)

// timestampLayouts are the accepted forms for current_time_iso and
// last_used_at values. Anything else is unparsable.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rankKey holds the deterministic ordering keys shared by all three
// selectors: ascending times_used, then never-used before used, then
// ascending parsed last_used_at (unparsable values sort after every
// parseable one), then ascending lexicographic id.
type rankKey struct {
	timesUsed int
	used      bool
	parsed    bool
	lastUsed  time.Time
	id        string
}

func makeRankKey(id string, timesUsed int, lastUsedAt *string) rankKey {
	key := rankKey{timesUsed: timesUsed, id: id}
	if lastUsedAt == nil {
		return key
	}
	key.used = true
	key.lastUsed, key.parsed = parseTimestamp(*lastUsedAt)
	return key
}

func lessRank(a, b rankKey) bool {
	if a.timesUsed != b.timesUsed {
		return a.timesUsed < b.timesUsed
	}
	if a.used != b.used {
		return !a.used
	}
	if a.used && b.used {
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && !a.lastUsed.Equal(b.lastUsed) {
			return a.lastUsed.Before(b.lastUsed)
		}
	}
	return a.id < b.id
}

// toneMatches reports whether a candidate's tone tags intersect the
// allow-list. Callers skip the tone stage entirely when the allow-list is
// empty; a candidate with no tags never matches a non-empty allow-list.
func toneMatches(tags, allowlist []string) bool {
	for _, tag := range tags {
		for _, allowed := range allowlist {
			if tag == allowed {
				return true
			}
		}
	}
	return false
}
