package runtime

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/adflow/pkg/domain"
)

// DefaultCampaignTriggers are the phrases that jump straight into the ad-campaign chain.
var DefaultCampaignTriggers = []string{
	"create campaign",
	"create a campaign",
	"create an ad campaign",
	"launch campaign",
	"launch a campaign",
	"start campaign",
	"start a campaign",
	"run ads",
	"facebook ad",
	"publish ad",
	"advertise this",
}

var affirmatives = map[string]bool{
	"yes":     true,
	"confirm": true,
	"ok":      true,
	"sure":    true,
}

var (
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

	// "option 2", "script #3", "choose 2", "pick number 1"
	keywordIndexPattern = regexp.MustCompile(`(?i)\b(?:option|script|choose|pick|select|number|no\.?)\s*#?\s*(\d+)\b`)
	hashIndexPattern    = regexp.MustCompile(`#(\d+)\b`)
	bareDigitPattern    = regexp.MustCompile(`\b(\d+)\b`)
)

var ordinals = []struct {
	words []string
	index int
}{
	{[]string{"first", "1st"}, 0},
	{[]string{"second", "2nd"}, 1},
	{[]string{"third", "3rd"}, 2},
}

// extractURL returns the first URL-like token of msg, without trailing punctuation.
func extractURL(msg string) (string, bool) {
	raw := urlPattern.FindString(msg)
	if raw == "" {
		return "", false
	}
	raw = strings.TrimRight(raw, `.,;:!?)]}'"`)
	if raw == "" {
		return "", false
	}
	return raw, true
}

// isAffirmative checks the first word of msg against the confirmation lexicon.
func isAffirmative(msg string) bool {
	fields := strings.Fields(strings.ToLower(msg))
	if len(fields) == 0 {
		return false
	}
	word := strings.TrimFunc(fields[0], func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return affirmatives[word]
}

// matchesTrigger reports whether msg contains one of the campaign phrases.
func matchesTrigger(msg string, triggers []string) bool {
	lower := strings.ToLower(msg)
	for _, t := range triggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// parseIndex extracts a 1-based choice from msg and returns it 0-based,
// provided it falls inside [0, n).
func parseIndex(msg string, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	valid := func(raw string) (int, bool) {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > n {
			return 0, false
		}
		return v - 1, true
	}

	if m := keywordIndexPattern.FindStringSubmatch(msg); m != nil {
		return valid(m[1])
	}
	if m := hashIndexPattern.FindStringSubmatch(msg); m != nil {
		return valid(m[1])
	}

	lower := strings.ToLower(msg)
	for _, o := range ordinals {
		for _, w := range o.words {
			if containsWord(lower, w) && o.index < n {
				return o.index, true
			}
		}
	}

	if m := bareDigitPattern.FindStringSubmatch(msg); m != nil {
		return valid(m[1])
	}
	return 0, false
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if f == word {
			return true
		}
	}
	return false
}

// matchAvatar finds the catalog entry whose ID or name appears in msg.
func matchAvatar(msg string, catalog []domain.Avatar) (string, bool) {
	lower := strings.ToLower(msg)
	for _, a := range catalog {
		if a.ID != "" && strings.Contains(lower, strings.ToLower(a.ID)) {
			return a.ID, true
		}
		if a.Name != "" && containsWord(lower, strings.ToLower(a.Name)) {
			return a.ID, true
		}
	}
	if i, ok := parseIndex(msg, len(catalog)); ok {
		return catalog[i].ID, true
	}
	return "", false
}

// matchAccount finds the account whose ID or name appears in msg.
func matchAccount(msg string, accounts []domain.AdAccount) (string, bool) {
	lower := strings.ToLower(msg)
	for _, a := range accounts {
		if a.ID != "" && strings.Contains(lower, strings.ToLower(a.ID)) {
			return a.ID, true
		}
		if a.Name != "" && strings.Contains(lower, strings.ToLower(a.Name)) {
			return a.ID, true
		}
	}
	if i, ok := parseIndex(msg, len(accounts)); ok {
		return accounts[i].ID, true
	}
	return "", false
}

// matchMedia finds the creative whose ID or name appears in msg, or a
// kind keyword ("video", "image") when exactly one creative has that kind.
func matchMedia(msg string, catalog []domain.Media) (*domain.Media, bool) {
	lower := strings.ToLower(msg)
	for i := range catalog {
		m := &catalog[i]
		if m.ID != "" && strings.Contains(lower, strings.ToLower(m.ID)) {
			return m, true
		}
		if m.Name != "" && strings.Contains(lower, strings.ToLower(m.Name)) {
			return m, true
		}
	}
	if i, ok := parseIndex(msg, len(catalog)); ok {
		return &catalog[i], true
	}
	for _, kind := range []domain.MediaKind{domain.MediaVideo, domain.MediaImage} {
		if !containsWord(lower, string(kind)) {
			continue
		}
		var found *domain.Media
		for i := range catalog {
			if catalog[i].Kind == kind {
				if found != nil {
					found = nil
					break
				}
				found = &catalog[i]
			}
		}
		if found != nil {
			return found, true
		}
	}
	return nil, false
}
