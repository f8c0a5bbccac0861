package model

import "strings"

// Chunk is a bounded, overlapping window of the concatenated document text.
// Start and End are rune offsets into that text.
type Chunk struct {
	Text          string `json:"text"`
	SourceTag     string `json:"source_tag"`
	SequenceIndex int    `json:"sequence_index"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
}

// ScoredChunk is a retrieval hit. Higher Score means more similar.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// SourceSpan locates one document inside the concatenated text, in runes.
type SourceSpan struct {
	Name  string
	Start int
	End   int
}

// TagChunks fills SourceTag of each chunk with the names of every span it overlaps.
func TagChunks(chunks []Chunk, spans []SourceSpan) {
	for i := range chunks {
		var names []string
		for _, span := range spans {
			if chunks[i].Start < span.End && span.Start < chunks[i].End {
				names = append(names, span.Name)
			}
		}
		chunks[i].SourceTag = strings.Join(names, ", ")
	}
}
