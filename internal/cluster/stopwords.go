package cluster

// stopwords is the fixed English stopword set used by theme extraction.
// Tokens of length <= 2 and non-alphabetic tokens are dropped separately.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
		"for", "of", "with", "by", "is", "are", "was", "were", "be",
		"been", "have", "has", "had", "do", "does", "did", "will",
		"would", "could", "should", "may", "might", "can", "cannot",
		"this", "that", "these", "those", "i", "you", "he", "she", "it",
		"we", "they", "me", "him", "her", "us", "them", "my", "your",
		"his", "its", "our", "their",
	} {
		stopwords[w] = struct{}{}
	}
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
