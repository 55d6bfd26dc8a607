package pipeline

import "strings"

const (
	defaultMaxChunkSize = 4000 // characters
	defaultOverlapSize  = 200  // characters

	minSentenceLength  = 10
	sentenceDelimiters = ".!?"
)

// Chunker splits transcripts into overlapping chunks at sentence
// boundaries so no insight straddles a hard cut.
type Chunker struct {
	maxChunkSize int
	overlapSize  int
}

// NewChunker creates a chunker with the default size parameters.
func NewChunker() *Chunker {
	return &Chunker{maxChunkSize: defaultMaxChunkSize, overlapSize: defaultOverlapSize}
}

// NewChunkerWithSizes creates a chunker with explicit sizes, for short
// test transcripts.
func NewChunkerWithSizes(maxChunkSize, overlapSize int) *Chunker {
	return &Chunker{maxChunkSize: maxChunkSize, overlapSize: overlapSize}
}

// Chunk splits a transcript into overlapping chunks. Transcripts that
// fit in one chunk come back unchanged.
func (c *Chunker) Chunk(transcript string) []string {
	if len(transcript) <= c.maxChunkSize {
		return []string{transcript}
	}

	sentences := splitSentences(transcript)

	var chunks []string
	var currentChunk, overlapBuffer string
	for _, sentence := range sentences {
		if len(currentChunk)+len(sentence) > c.maxChunkSize && currentChunk != "" {
			chunks = append(chunks, overlapBuffer+currentChunk)
			overlapBuffer = c.createOverlap(currentChunk)
			currentChunk = sentence
		} else {
			currentChunk += sentence
		}
	}
	if currentChunk != "" {
		chunks = append(chunks, overlapBuffer+currentChunk)
	}

	return chunks
}

// splitSentences splits text at sentence delimiters, keeping the
// punctuation with the sentence. Fragments shorter than
// minSentenceLength are glued to the next sentence so abbreviations do
// not produce confetti.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if strings.ContainsRune(sentenceDelimiters, r) && len(strings.TrimSpace(current.String())) > minSentenceLength {
			sentences = append(sentences, strings.TrimSpace(current.String())+" ")
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// createOverlap takes the tail of a chunk, snapped to a word boundary.
func (c *Chunker) createOverlap(chunk string) string {
	if len(chunk) <= c.overlapSize {
		return chunk
	}

	overlap := chunk[len(chunk)-c.overlapSize:]
	if spaceIdx := strings.Index(overlap, " "); spaceIdx > 0 {
		overlap = overlap[spaceIdx:]
	}

	return strings.TrimSpace(overlap) + " "
}
