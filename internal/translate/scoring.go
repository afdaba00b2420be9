package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Scorer computes heuristic confidence and quality metrics for a produced
// translation. It is pure: the same source/target pair always yields the
// same result.
type Scorer struct {
	profile LanguageProfile
}

// NewScorer returns a scorer tuned for the given target language.
func NewScorer(targetLanguage string) *Scorer {
	return &Scorer{profile: ProfileFor(targetLanguage)}
}

// Score computes the confidence score in [0, 1] together with the quality
// metrics record for one source/target pair. Character counts are computed
// over NFC-normalized runes so combining-mark sequences measure consistently.
func (s *Scorer) Score(source, target string) (float64, QualityMetrics) {
	source = norm.NFC.String(source)
	target = norm.NFC.String(target)

	score := 0.5

	sourceLen := utf8.RuneCountInString(source)
	targetLen := utf8.RuneCountInString(target)
	if sourceLen > 0 && targetLen > 0 {
		score += 0.2 * float64(min(sourceLen, targetLen)) / float64(max(sourceLen, targetLen))
	}
	if s.profile.ContainsScript(target) {
		score += 0.2
	}
	if s.profile.ContainsFunctionWord(target) {
		score += 0.1
	}
	if strings.TrimSpace(target) != "" {
		score += 0.1
	}
	score = clamp01(score)

	metrics := QualityMetrics{
		LengthRatio:       float64(targetLen) / float64(max(sourceLen, 1)),
		HasTargetScript:   s.profile.ContainsScript(target),
		HasNumbers:        strings.ContainsFunc(target, unicode.IsDigit),
		HasPunctuation:    strings.ContainsAny(target, s.profile.Punctuation),
		WordCount:         len(strings.Fields(target)),
		CharacterCount:    targetLen,
		IsNotEmpty:        strings.TrimSpace(target) != "",
		HasSourceNumerals: s.profile.SourceNumerals != "" && strings.ContainsAny(target, s.profile.SourceNumerals),
	}

	overall := 0.0
	if metrics.HasTargetScript {
		overall += 0.3
	}
	if metrics.LengthRatio >= 0.5 && metrics.LengthRatio <= 2.0 {
		overall += 0.2
	}
	if metrics.HasPunctuation {
		overall += 0.1
	}
	if metrics.IsNotEmpty {
		overall += 0.2
	}
	if metrics.WordCount > 0 {
		overall += 0.2
	}
	metrics.Overall = clamp01(overall)

	return score, metrics
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
