// internal/content/coherence/coherence.go
package coherence

import (
	"fmt"
	"strings"
	"unicode"
)

// Result is the outcome of a headline/caption coherence check.
type Result struct {
	IsCoherent bool     `json:"isCoherent"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
}

const (
	minTokenLength = 4
	prefixLength   = 5

	baseScore   = 40
	strongValue = 20
	weakValue   = 10
	maxScore    = 100

	// Scores for pairs with no lexical overlap stay in the bottom band.
	noMatchCeiling = 30
)

// Validator checks that a headline and caption read like two views of the
// same message: they must share vocabulary directly, through a synonym
// group, or through a common word stem.
type Validator struct {
	passScore        int
	minCaptionLength int
	synonymGroup     map[string]int
}

// New builds a Validator. synonymGroups lists interchangeable terms, e.g.
// {"food", "cuisine", "dining"}; passScore and minCaptionLength come from
// content configuration.
func New(passScore, minCaptionLength int, synonymGroups [][]string) *Validator {
	groups := make(map[string]int)
	for id, group := range synonymGroups {
		for _, term := range group {
			groups[strings.ToLower(term)] = id
		}
	}
	return &Validator{
		passScore:        passScore,
		minCaptionLength: minCaptionLength,
		synonymGroup:     groups,
	}
}

// Validate scores the lexical overlap between headline and caption.
// Captions below the minimum length carry too little text for lexical
// comparison and are accepted outright.
func (v *Validator) Validate(headline, caption, businessType string) Result {
	if len(strings.TrimSpace(caption)) < v.minCaptionLength {
		return Result{
			IsCoherent: true,
			Score:      maxScore,
			Reasons:    []string{"caption below lexical comparison threshold"},
		}
	}

	headlineTokens := tokenize(headline)
	captionTokens := tokenize(caption)

	if len(headlineTokens) == 0 {
		return Result{
			IsCoherent: false,
			Score:      0,
			Reasons:    []string{"headline carries no comparable tokens"},
		}
	}

	strong := 0
	weak := 0
	var reasons []string

	for _, ht := range headlineTokens {
		switch kind, partner := v.matchToken(ht, captionTokens); kind {
		case matchExact:
			strong++
			reasons = append(reasons, fmt.Sprintf("shared term %q", ht))
		case matchSynonym:
			strong++
			reasons = append(reasons, fmt.Sprintf("%q and %q are synonyms", ht, partner))
		case matchStem:
			weak++
			reasons = append(reasons, fmt.Sprintf("%q and %q share a stem", ht, partner))
		}
	}

	if strong+weak == 0 {
		score := 0
		if businessType != "" && containsToken(captionTokens, strings.ToLower(businessType)) {
			// The caption at least stays on the business topic.
			score = noMatchCeiling
			reasons = append(reasons, fmt.Sprintf("caption mentions business type %q but shares nothing with the headline", businessType))
		} else {
			reasons = append(reasons, "headline and caption share no terms, synonyms, or stems")
		}
		return Result{IsCoherent: false, Score: score, Reasons: reasons}
	}

	score := baseScore + strong*strongValue + weak*weakValue
	if score > maxScore {
		score = maxScore
	}

	return Result{IsCoherent: true, Score: score, Reasons: reasons}
}

// Passes applies the acceptance threshold to a Result.
func (v *Validator) Passes(r Result) bool {
	return r.IsCoherent && r.Score >= v.passScore
}

// PassScore returns the configured acceptance threshold.
func (v *Validator) PassScore() int {
	return v.passScore
}

type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchSynonym
	matchStem
)

func (v *Validator) matchToken(token string, candidates []string) (matchKind, string) {
	group, inGroup := v.synonymGroup[token]

	// Exact and synonym matches first; stems only when nothing stronger.
	for _, c := range candidates {
		if c == token {
			return matchExact, c
		}
		if inGroup {
			if cg, ok := v.synonymGroup[c]; ok && cg == group {
				return matchSynonym, c
			}
		}
	}
	if len(token) >= prefixLength {
		prefix := token[:prefixLength]
		for _, c := range candidates {
			if len(c) >= prefixLength && c[:prefixLength] == prefix {
				return matchStem, c
			}
		}
	}
	return matchNone, ""
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < minTokenLength {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
