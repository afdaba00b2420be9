package translate

import (
	"fmt"
	"strings"
)

// PromptBuilder renders one chunk of segments into a single model prompt and
// estimates its token footprint against the chunking budget.
type PromptBuilder struct {
	systemPrompt   string
	sourceLanguage string
	targetLanguage string
}

// NewPromptBuilder returns a builder for the given language pair. The system
// prompt only participates in size estimation; providers send it separately.
func NewPromptBuilder(systemPrompt, sourceLanguage, targetLanguage string) *PromptBuilder {
	return &PromptBuilder{
		systemPrompt:   systemPrompt,
		sourceLanguage: sourceLanguage,
		targetLanguage: targetLanguage,
	}
}

// Build renders the prompt for a chunk. Single segments get a detailed
// instruction; larger chunks use a compact numbered list with one requested
// translation per line.
func (b *PromptBuilder) Build(segments []Segment) string {
	if len(segments) == 1 {
		return fmt.Sprintf(`Please translate the following %s text to %s:

%s text: %s

Provide only the %s translation:`,
			b.sourceLanguage, b.targetLanguage,
			b.sourceLanguage, segments[0].OriginalText,
			b.targetLanguage)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate these %s texts to %s. Provide each translation on a new line:\n\n",
		b.sourceLanguage, b.targetLanguage)
	for i, segment := range segments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, segment.OriginalText)
	}
	sb.WriteString("\nTranslations:")
	return sb.String()
}

// Estimation buffer covering message framing and instructions around the
// prompt proper.
const promptSizeBuffer = 500

// EstimateTokens approximates the token count for a chunk using the
// 4-characters-per-token rule of thumb. Used only for chunk splitting
// decisions, never for billing.
func (b *PromptBuilder) EstimateTokens(segments []Segment) int {
	totalChars := len(b.systemPrompt) + len(b.Build(segments)) + promptSizeBuffer
	return totalChars / 4
}
