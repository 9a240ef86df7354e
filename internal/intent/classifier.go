package intent

import (
	"regexp"
	"strings"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

// Turn is the input of a single classification.
type Turn struct {
	Text string
	// PriorAssistant is the text of the previous assistant message, if any.
	PriorAssistant string
	// PriorAskedForData is set when the previous assistant message was a missing-data request.
	PriorAskedForData bool
}

// Rule maps a trigger to an intent. Rules are evaluated in order and the
// first match wins.
type Rule struct {
	Name   string
	Intent entity.Intent
	Match  func(in *input) bool
}

type input struct {
	turn   Turn
	tokens []string
	joined string
}

type Classifier struct {
	rules []Rule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// DefaultRules returns the rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			// "what else do you need", or "need" and "document" together
			// without a request to create it, or "which ones?" right after
			// we asked for data.
			Name:   "missing-data",
			Intent: entity.IntentMissingDataQuery,
			Match: func(in *input) bool {
				if in.hasPhrase(missingDataPhrases) {
					return true
				}
				if in.hasStem(needStems) && in.hasStem(documentStems) && !in.hasCreationVerb() {
					return true
				}
				return in.turn.PriorAskedForData && in.hasToken(whichWords)
			},
		},
		{
			// creation verb plus "use what you have, do not ask"
			Name:   "force-proceed",
			Intent: entity.IntentForceProceed,
			Match: func(in *input) bool {
				return in.hasCreationVerb() && in.hasPhrase(proceedPhrases)
			},
		},
		{
			// creation verb, or "continue" while the previous answer is a document
			Name:   "document-request",
			Intent: entity.IntentDocumentRequest,
			Match: func(in *input) bool {
				if in.hasCreationVerb() {
					return true
				}
				return in.hasContinue() && LooksLikeDocument(in.turn.PriorAssistant)
			},
		},
		{
			Name:   "chat-question",
			Intent: entity.IntentChatQuestion,
			Match: func(in *input) bool {
				return in.isQuestion()
			},
		},
	}
}

// Classify returns the intent of the first matching rule or fallback.
func (c *Classifier) Classify(turn Turn, fallback entity.Intent) entity.Intent {
	in := newInput(turn)
	for _, r := range c.rules {
		if r.Match(in) {
			return r.Intent
		}
	}
	return fallback
}

// Classify runs the default rule table.
func Classify(turn Turn, fallback entity.Intent) entity.Intent {
	return NewClassifier().Classify(turn, fallback)
}

func newInput(turn Turn) *input {
	text := strings.NewReplacer("'", "", "’", "", "`", "").Replace(turn.Text)
	tokens := textnorm.Tokens(text)
	return &input{
		turn:   turn,
		tokens: tokens,
		joined: " " + strings.Join(tokens, " ") + " ",
	}
}

func (in *input) isQuestion() bool {
	return strings.Contains(in.turn.Text, "?") || in.hasToken(interrogatives)
}

func (in *input) hasPhrase(phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(in.joined, p) {
			return true
		}
	}
	return false
}

func (in *input) hasToken(words map[string]bool) bool {
	for _, t := range in.tokens {
		if words[t] {
			return true
		}
	}
	return false
}

func (in *input) hasStem(stems []string) bool {
	for _, t := range in.tokens {
		for _, s := range stems {
			if stemMatches(t, s) {
				return true
			}
		}
	}
	return false
}

// stemMatches accepts an exact prefix, or a near miss for stems of five or more letters.
func stemMatches(token, stem string) bool {
	if strings.HasPrefix(token, stem) {
		return true
	}
	n := len([]rune(stem))
	if n < 5 {
		return false
	}
	rt := []rune(token)
	if len(rt) < n-2 {
		return false
	}
	if len(rt) > n {
		rt = rt[:n]
	}
	return Levenshtein(string(rt), stem) <= 2
}

func (in *input) hasCreationVerb() bool {
	for i, t := range in.tokens {
		if !hasAnyPrefix(t, creationStems) {
			continue
		}
		if !negatedAt(in.tokens, i) {
			return true
		}
	}
	return false
}

// negatedAt reports a negation within two tokens before position i.
func negatedAt(tokens []string, i int) bool {
	for j := max(0, i-2); j < i; j++ {
		if negations[tokens[j]] {
			return true
		}
	}
	return false
}

func (in *input) hasContinue() bool {
	for _, t := range in.tokens {
		if continueWords[t] || hasAnyPrefix(t, continueStems) {
			return true
		}
	}
	return strings.Contains(in.joined, " go on ")
}

func hasAnyPrefix(token string, stems []string) bool {
	for _, s := range stems {
		if strings.HasPrefix(token, s) {
			return true
		}
	}
	return false
}

var (
	docHeadingRe = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+\S`)
	mermaidRe    = regexp.MustCompile("(?m)^\\s*```\\s*mermaid")
)

// LooksLikeDocument reports whether text resembles a generated document:
// two or more markdown headings, a diagram block or two domain keywords.
func LooksLikeDocument(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if len(docHeadingRe.FindAllStringIndex(text, 2)) >= 2 || mermaidRe.MatchString(text) {
		return true
	}

	joined := " " + strings.Join(textnorm.Tokens(text), " ") + " "
	hits := 0
	for _, k := range domainKeywords {
		if strings.Contains(joined, k) {
			hits++
		}
	}
	return hits >= 2
}
