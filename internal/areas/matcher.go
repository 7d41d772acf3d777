package areas

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher answers whether feed area names belong to the configured
// monitored set. Comparison happens on normalized names because the feed's
// spelling of locality names is not stable (diacritics, niqqud, hyphenation,
// stray whitespace).
type Matcher struct {
	wanted map[string]struct{}
}

// NewMatcher builds a matcher from the monitored area names plus optional
// per-name aliases (alternate spellings keyed by the configured name).
func NewMatcher(names []string, aliases map[string][]string) *Matcher {
	wanted := make(map[string]struct{}, len(names))
	add := func(name string) {
		if key := Normalize(name); key != "" {
			wanted[key] = struct{}{}
		}
	}
	for _, name := range names {
		add(name)
		for _, alias := range aliases[name] {
			add(alias)
		}
	}
	return &Matcher{wanted: wanted}
}

// Match returns the members of feedAreas that are monitored, preserving
// feed order and the original feed spelling. Repeated entries are kept as
// the feed sent them.
func (m *Matcher) Match(feedAreas []string) []string {
	var out []string
	for _, area := range feedAreas {
		if _, ok := m.wanted[Normalize(area)]; ok {
			out = append(out, area)
		}
	}
	return out
}

// Normalize folds an area name for comparison: lower-case, combining marks
// removed, hyphens and underscores treated as spaces, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
