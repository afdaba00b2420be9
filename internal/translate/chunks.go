package translate

// CreateChunks partitions segments into batches of at most chunkSize,
// preserving input order. A batch whose estimated prompt size exceeds
// maxPromptTokens is split in half recursively, down to single segments.
// The concatenation of the returned chunks always reconstructs the input
// exactly.
func CreateChunks(segments []Segment, chunkSize, maxPromptTokens int, builder *PromptBuilder) [][]Segment {
	if chunkSize < 1 {
		chunkSize = 1
	}
	var chunks [][]Segment
	for start := 0; start < len(segments); start += chunkSize {
		end := min(start+chunkSize, len(segments))
		chunks = append(chunks, splitBySize(segments[start:end], maxPromptTokens, builder)...)
	}
	return chunks
}

func splitBySize(chunk []Segment, maxPromptTokens int, builder *PromptBuilder) [][]Segment {
	if len(chunk) <= 1 || builder.EstimateTokens(chunk) <= maxPromptTokens {
		return [][]Segment{chunk}
	}
	mid := len(chunk) / 2
	result := splitBySize(chunk[:mid], maxPromptTokens, builder)
	return append(result, splitBySize(chunk[mid:], maxPromptTokens, builder)...)
}
