// Package fuzzy classifies free-text input against fixed phrase lists using
// a normalized edit-distance similarity score.
package fuzzy

import (
	"log/slog"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Calibrated similarity cutoffs (0..100) used across the conversation flow.
const (
	// ThresholdYesNo classifies affirmative/negative replies.
	ThresholdYesNo = 75
	// ThresholdJobName matches free text against known job names.
	ThresholdJobName = 85
	// ThresholdKeyword matches list-jobs keyword probes.
	ThresholdKeyword = 95
)

// Matcher scores input strings against candidate phrase lists.
type Matcher struct {
	lev *metrics.Levenshtein
}

// NewMatcher creates a Matcher with case-insensitive Levenshtein scoring.
func NewMatcher() *Matcher {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &Matcher{lev: lev}
}

// Ratio returns the normalized similarity of two strings on a 0..100 scale.
func (m *Matcher) Ratio(a, b string) float64 {
	return strutil.Similarity(a, b, m.lev) * 100
}

// BestMatch returns the best-scoring candidate for the input, and whether its
// score reached the threshold. Ties resolve to the earliest candidate in the
// list; callers must not depend on tie order.
func (m *Matcher) BestMatch(input string, candidates []string, threshold float64) (string, float64, bool) {
	input = strings.TrimSpace(input)
	if input == "" || len(candidates) == 0 {
		return "", 0, false
	}

	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		score := m.Ratio(input, c)
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	if bestScore < threshold {
		slog.Debug("fuzzy BestMatch below threshold", "input", input, "best", best, "score", bestScore, "threshold", threshold)
		return "", bestScore, false
	}
	slog.Debug("fuzzy BestMatch hit", "input", input, "best", best, "score", bestScore)
	return best, bestScore, true
}

// IsGreeting reports whether the input reads as a plain salutation.
func (m *Matcher) IsGreeting(input string) bool {
	_, _, ok := m.BestMatch(strings.ToLower(input), Greetings, ThresholdYesNo)
	return ok
}

// IsAffirmative reports whether the input reads as a positive reply.
func (m *Matcher) IsAffirmative(input string) bool {
	_, _, ok := m.BestMatch(strings.ToLower(input), AffirmativeReplies, ThresholdYesNo)
	return ok
}

// IsNegative reports whether the input reads as a negative reply.
func (m *Matcher) IsNegative(input string) bool {
	_, _, ok := m.BestMatch(strings.ToLower(input), NegativeReplies, ThresholdYesNo)
	return ok
}

// IsListJobsRequest reports whether the input asks for the list of open jobs.
// The keyword probe uses the strict cutoff and then re-checks the winning
// phrase with the plain ratio at 80 to filter out long inputs that only
// brush against a keyword.
func (m *Matcher) IsListJobsRequest(input string) bool {
	lower := strings.ToLower(input)
	phrase, _, ok := m.BestMatch(lower, ListJobsKeywords, ThresholdKeyword)
	if !ok {
		return false
	}
	return m.Ratio(lower, phrase) >= 80
}
