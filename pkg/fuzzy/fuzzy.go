// Package fuzzy resolves approximate names against a list of candidates.
//
// Search runs in two stages. The stem stage tokenizes query and candidates,
// drops English stop words and reduces every token to its Snowball stem; a
// candidate matches when it shares at least one stem with the query. Only
// when nothing matches does the similarity stage run: each candidate is
// scored by normalized Levenshtein similarity and kept when the score reaches
// the engine threshold.
//
// Matches are returned in candidate order. Search never errors: an
// unresolvable query yields [NoMatch].
package fuzzy

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
)

// DefaultThreshold is the minimum similarity score kept by the similarity stage.
const DefaultThreshold = 0.5

// Stage identifies which stage produced a [Result].
type Stage int

const (
	StageNone Stage = iota
	StageStem
	StageSimilarity
)

func (s Stage) String() string {
	switch s {
	case StageStem:
		return "stem"
	case StageSimilarity:
		return "similarity"
	default:
		return "none"
	}
}

// Result is the outcome of a search. The zero value is [NoMatch].
type Result struct {
	matches []string
	stage   Stage
}

// NoMatch is the result of a search that found nothing.
var NoMatch = Result{}

// Found reports whether at least one candidate matched.
func (r Result) Found() bool { return len(r.matches) > 0 }

// Matches returns the matching candidates in input order.
func (r Result) Matches() []string { return slices.Clone(r.matches) }

// Stage returns the stage that produced the matches.
func (r Result) Stage() Stage { return r.stage }

// Engine searches candidates with a configurable similarity threshold.
// The zero value uses [DefaultThreshold].
type Engine struct {
	Threshold float64
}

// Search matches query against candidates with the default engine.
func Search(candidates []string, query string) Result {
	return Engine{}.Search(candidates, query)
}

// Search matches query against candidates. Candidates are not modified.
func (e Engine) Search(candidates []string, query string) Result {
	if len(candidates) == 0 || len(Tokenize(query)) == 0 {
		return NoMatch
	}

	if m := stemMatches(candidates, query); len(m) > 0 {
		return Result{matches: m, stage: StageStem}
	}

	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var m []string
	for _, c := range candidates {
		if Score(query, c) >= threshold {
			m = append(m, c)
		}
	}
	if len(m) > 0 {
		return Result{matches: m, stage: StageSimilarity}
	}
	return NoMatch
}

func stemMatches(candidates []string, query string) []string {
	want := Stems(query)
	if len(want) == 0 {
		return nil
	}
	var out []string
	for _, c := range candidates {
		for s := range Stems(c) {
			if want[s] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Stems returns the set of Snowball stems of the non-stop-word tokens of s.
func Stems(s string) map[string]bool {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[english.Stem(t, false)] = true
	}
	return out
}

// Score returns the similarity of query to candidate in [0, 1]: the best
// ratio of the query against the whole candidate or any single token of it.
func Score(query, candidate string) float64 {
	q := fold(strings.TrimSpace(query))
	best := ratio(q, fold(candidate))
	for _, t := range fields(candidate) {
		if r := ratio(q, t); r > best {
			best = r
		}
	}
	return best
}

// ratio is 1 - distance/maxlen over runes.
func ratio(a, b string) float64 {
	n := max(len([]rune(a)), len([]rune(b)))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(n)
}

// Tokenize splits s on every rune that is neither a letter nor a digit,
// case-folds the pieces and drops English stop words.
func Tokenize(s string) []string {
	var out []string
	for _, t := range fields(s) {
		if !stopWords[t] {
			out = append(out, t)
		}
	}
	return out
}

func fields(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fold case-folds s. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
