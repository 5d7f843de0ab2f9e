package scrape

import (
	"strings"
	"unicode/utf8"
)

// ValidatorConfig holds every tunable of the acceptance heuristic. The zero
// value is not usable; construct via NewValidator with explicit thresholds.
type ValidatorConfig struct {
	// MinContentChars rejects pages whose combined text is shorter.
	MinContentChars int
	// ShortContentChars bounds the "short text" repetition rule.
	ShortContentChars int
	// LongContentChars is the length above which genuine-phrase presence
	// upgrades confidence.
	LongContentChars int
	// ShortRepetitionRatio is the lenient distinct/total cutoff applied to
	// short text only.
	ShortRepetitionRatio float64
	// ExtremeRepetitionRatio is the strict cutoff applied at any length.
	ExtremeRepetitionRatio float64
	// MinTokensForRatio skips the repetition rules for tiny token counts.
	MinTokensForRatio int
	// PlaceholderTitles are titles that mark a navigation-only page.
	PlaceholderTitles []string
	// BoilerplatePhrases indicate empty/navigation pages when clustered.
	BoilerplatePhrases []string
	// GenuinePhrases are positive signals of real sutta text.
	GenuinePhrases []string
}

// Validator decides whether extracted text is genuine sutta content rather
// than navigation and footer boilerplate. It is pure and deterministic: the
// same inputs always yield the same verdict. It is a gate, not a classifier.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator builds a Validator from the supplied thresholds.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate applies the acceptance rules in order; the first matching rule
// decides. Long content with no positive signal is accepted at lowered
// confidence (QualityFallback), a deliberate bias toward false accepts.
func (v *Validator) Validate(sinhala, pali, title string) Verdict {
	if v.titleIsPlaceholder(title) {
		return Verdict{Acceptable: false, Quality: QualityInvalid}
	}

	// Lengths are measured in runes so Sinhala text is not inflated by its
	// UTF-8 encoding.
	combined := sinhala + " " + pali
	totalLen := utf8.RuneCountInString(strings.TrimSpace(sinhala + pali))
	if totalLen < v.cfg.MinContentChars {
		return Verdict{Acceptable: false, Quality: QualityInvalid}
	}

	genuine := v.countPhrases(combined, v.cfg.GenuinePhrases)

	if v.countPhrases(combined, v.cfg.BoilerplatePhrases) >= 2 && genuine == 0 {
		return Verdict{Acceptable: false, Quality: QualityInvalid}
	}

	if rejected := v.repetitionReject(combined, totalLen); rejected {
		return Verdict{Acceptable: false, Quality: QualityInvalid}
	}

	if totalLen > v.cfg.LongContentChars {
		if genuine > 0 {
			return Verdict{Acceptable: true, Quality: QualityValid}
		}
		// Long text with no positive signal may still be a sutta.
		return Verdict{Acceptable: true, Quality: QualityFallback}
	}

	return Verdict{Acceptable: true, Quality: QualityValid}
}

func (v *Validator) titleIsPlaceholder(title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return true
	}
	for _, placeholder := range v.cfg.PlaceholderTitles {
		if trimmed == placeholder {
			return true
		}
	}
	return false
}

func (v *Validator) countPhrases(text string, phrases []string) int {
	found := 0
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(text, phrase) {
			found++
		}
	}
	return found
}

// repetitionReject computes the distinct/total token ratio. Tightly
// repetitive short text is boilerplate; near-total repetition is rejected at
// any length.
func (v *Validator) repetitionReject(combined string, totalLen int) bool {
	tokens := strings.Fields(combined)
	if len(tokens) <= v.cfg.MinTokensForRatio {
		return false
	}
	distinct := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		distinct[tok] = struct{}{}
	}
	ratio := float64(len(distinct)) / float64(len(tokens))

	if ratio < v.cfg.ShortRepetitionRatio && totalLen < v.cfg.ShortContentChars {
		return true
	}
	return ratio < v.cfg.ExtremeRepetitionRatio
}
