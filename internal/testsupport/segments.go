package testsupport

import (
	"fmt"

	"subtrans/internal/translate"
)

// Segments builds n sequential segments with deterministic ids and text.
func Segments(n int) []translate.Segment {
	segments := make([]translate.Segment, 0, n)
	for i := 1; i <= n; i++ {
		segments = append(segments, translate.Segment{
			ID:           fmt.Sprintf("seg-%03d", i),
			OriginalText: fmt.Sprintf("Source line %d", i),
		})
	}
	return segments
}
