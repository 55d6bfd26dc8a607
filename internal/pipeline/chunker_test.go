package pipeline

import (
	"strings"
	"testing"
)

func TestChunk_ShortTranscriptPassesThrough(t *testing.T) {
	chunker := NewChunker()
	transcript := "This is a short transcript. It fits in one chunk."

	chunks := chunker.Chunk(transcript)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != transcript {
		t.Errorf("short transcript should pass through unchanged")
	}
}

func TestChunk_LongTranscriptSplits(t *testing.T) {
	chunker := NewChunkerWithSizes(200, 40)

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("This sentence talks about some interesting development in technology. ")
	}
	transcript := sb.String()

	chunks := chunker.Chunk(transcript)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(transcript), len(chunks))
	}
	for i, chunk := range chunks {
		// Each chunk is bounded by max size plus the carried overlap.
		if len(chunk) > 200+40+1 {
			t.Errorf("chunk %d exceeds bound: %d chars", i, len(chunk))
		}
	}
}

func TestChunk_SplitsAtSentenceBoundaries(t *testing.T) {
	chunker := NewChunkerWithSizes(100, 20)
	transcript := strings.Repeat("A full sentence lives right here. ", 20)

	chunks := chunker.Chunk(transcript)

	for i, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, trimmed)
		}
	}
}

func TestChunk_OverlapCarriesContext(t *testing.T) {
	chunker := NewChunkerWithSizes(150, 50)
	transcript := strings.Repeat("Sentence number one goes here. ", 20)

	chunks := chunker.Chunk(transcript)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Every chunk after the first starts with text repeated from the
	// tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := strings.Fields(chunks[i])
		if len(head) == 0 {
			t.Fatalf("chunk %d is empty", i)
		}
		if !strings.Contains(chunks[i-1], head[0]) {
			t.Errorf("chunk %d carries no overlap from chunk %d", i, i-1)
		}
	}
}

func TestSplitSentences_GluesShortFragments(t *testing.T) {
	// "Dr." alone is under the minimum sentence length, so it must not
	// split on its own.
	sentences := splitSentences("Dr. Smith explained the results clearly. Another sentence follows here.")

	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %q", len(sentences), sentences)
	}
	if !strings.HasPrefix(sentences[0], "Dr. Smith") {
		t.Errorf("abbreviation split incorrectly: %q", sentences[0])
	}
}

func TestSplitSentences_KeepsTrailingFragment(t *testing.T) {
	sentences := splitSentences("A complete sentence ends here. trailing words without punctuation")

	if len(sentences) != 2 {
		t.Fatalf("expected 2 parts, got %d: %q", len(sentences), sentences)
	}
	if sentences[1] != "trailing words without punctuation" {
		t.Errorf("trailing fragment lost: %q", sentences[1])
	}
}

func TestCreateOverlap_WordBoundary(t *testing.T) {
	chunker := NewChunkerWithSizes(1000, 20)

	overlap := chunker.createOverlap("the quick brown fox jumps over the lazy sleeping dog")

	if len(overlap) > 21 {
		t.Errorf("overlap too long: %d chars", len(overlap))
	}
	// Snapped to a word boundary: no leading partial word.
	if strings.HasPrefix(overlap, " ") {
		t.Errorf("overlap not trimmed: %q", overlap)
	}
	if !strings.HasSuffix(overlap, " ") {
		t.Errorf("overlap should end with separator for concatenation: %q", overlap)
	}
}

func TestCreateOverlap_ShortChunkReturnsWhole(t *testing.T) {
	chunker := NewChunkerWithSizes(1000, 200)

	chunk := "tiny chunk"
	if got := chunker.createOverlap(chunk); got != chunk {
		t.Errorf("expected whole chunk as overlap, got %q", got)
	}
}
