package stub

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

var (
	completePhrases = []string{"i'm done", "im done", "that's all", "thats all", "finish", "stop here", "we're done"}
	nextPhrases     = []string{"next", "looks good", "look good", "continue", "go ahead", "move on", "approve", "lgtm", "perfect", "sounds good"}

	// selectionPattern spots a script pick, e.g. "choose 2" or "I like the first one".
	selectionPattern = regexp.MustCompile(`\b(?:option|script|choose|pick|select|number)\s*#?\s*\d+\b|\b(?:first|second|third)\b`)
)

// aliases map topic words to the stage that owns them.
var aliases = []struct {
	word  string
	stage domain.Stage
}{
	{"audience", domain.StageAnalyze},
	{"analysis", domain.StageAnalyze},
	{"voiceover", domain.StageSynthesizeAudio},
	{"voice", domain.StageSynthesizeAudio},
	{"presenter", domain.StageSelectAvatar},
	{"avatar", domain.StageSelectAvatar},
	{"video", domain.StageRenderVideo},
	{"visuals", domain.StageGenerateImages},
	{"images", domain.StageGenerateImages},
}

// KeywordClassifier answers navigation questions with word rules instead of a model.
// It never fails.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

// Classify checks, in order: stop phrases, a stage named outright, a script
// pick while drafting, approval, feedback on a selected script, and topic
// words owned by a different stage. Anything else is feedback for the
// current stage.
func (k *KeywordClassifier) Classify(ctx context.Context, current domain.Stage, message string) (ports.Classification, error) {
	lower := strings.ToLower(strings.TrimSpace(message))
	words := tokenize(lower)

	if p, ok := containsAny(lower, completePhrases); ok {
		return result(domain.IntentComplete, "stop phrase %q", p), nil
	}

	for _, st := range domain.ForwardOrder {
		name := string(st)
		if st != current && (strings.Contains(lower, name) || strings.Contains(lower, strings.ReplaceAll(name, "_", " "))) {
			return result(domain.IntentFor(st), "stage %s named", st), nil
		}
	}

	if current == domain.StageDraftScripts && selectionPattern.MatchString(lower) {
		return result(domain.IntentFor(domain.StageSelectScript), "script selection"), nil
	}

	for _, p := range nextPhrases {
		if hasPhrase(words, p) {
			return result(domain.IntentNext, "approval phrase %q", p), nil
		}
	}

	if current == domain.StageSelectScript && !selectionPattern.MatchString(lower) {
		return result(domain.IntentFor(domain.StageRefineScript), "feedback on the selected script"), nil
	}

	for _, a := range aliases {
		if a.stage != current && hasPhrase(words, a.word) {
			return result(domain.IntentFor(a.stage), "topic %q belongs to %s", a.word, a.stage), nil
		}
	}

	return result(domain.IntentStay, "feedback for %s", current), nil
}

func result(intent domain.Intent, format string, args ...any) ports.Classification {
	return ports.Classification{Intent: string(intent), Reasoning: fmt.Sprintf(format, args...)}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// hasPhrase reports whether the words of phrase appear consecutively in words.
func hasPhrase(words []string, phrase string) bool {
	target := tokenize(phrase)
	for i := 0; i+len(target) <= len(words); i++ {
		match := true
		for j, t := range target {
			if words[i+j] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func containsAny(s string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return p, true
		}
	}
	return "", false
}
