package judge

import (
	"regexp"
	"strings"
)

// KeyPointMethod is the version string stamped into
// metadata.key_point_method by every evaluation.
const KeyPointMethod = "heuristic_v1"

// keyPointStopwords is the fixed stopword set removed from the first
// sentence when extracting the informative tokens of a text longer than 20
// words.
var keyPointStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "and": true,
	"or": true, "but": true, "if": true, "then": true, "of": true, "to": true,
	"in": true, "on": true, "at": true, "for": true, "with": true, "as": true,
	"by": true, "it": true, "that": true, "this": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true,
	"we": true, "they": true, "do": true, "does": true, "did": true,
	"has": true, "have": true, "had": true, "will": true, "would": true,
	"can": true, "could": true, "should": true, "not": true, "no": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// sentenceBoundary splits on a terminal '.', '!' or '?' followed by
// whitespace or end of string.
var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+|(?:[.!?])$`)

// NormalizeWhitespace collapses all runs of whitespace to a single space
// and trims the result.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ExtractKeyPoint computes the deterministic, heuristic single-line summary
// attached to every evaluation. If the normalized input is at most 20
// whitespace-separated tokens it is returned unchanged; otherwise the first
// non-trivial sentence is taken, stopwords are removed, duplicates are
// dropped while preserving order, and at most 20 informative tokens are
// returned.
func ExtractKeyPoint(s string) string {
	normalized := NormalizeWhitespace(s)
	if normalized == "" {
		return ""
	}

	words := strings.Split(normalized, " ")
	if len(words) <= 20 {
		return normalized
	}

	sentence := firstNonTrivialSentence(normalized)
	tokens := strings.Split(sentence, " ")

	seen := make(map[string]bool, len(tokens))
	informative := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lower := strings.ToLower(strings.Trim(tok, ".,!?;:\"'"))
		if lower == "" || keyPointStopwords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		informative = append(informative, tok)
		if len(informative) == 20 {
			break
		}
	}

	return strings.Join(informative, " ")
}

// firstNonTrivialSentence splits normalized into sentences on '.', '!', '?'
// boundaries and returns the first one with at least one word.
func firstNonTrivialSentence(normalized string) string {
	sentences := sentenceBoundary.Split(normalized, -1)
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed != "" {
			return trimmed
		}
	}
	return normalized
}

// ApplyKeyPoints overlays the three heuristic key-point fields plus the
// method version onto an EvaluationResult's metadata, without masking any
// existing fields the judge itself returned.
func ApplyKeyPoints(metadata map[string]any, userMessage, expectedText, generatedText string) map[string]any {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["user_key_point"] = ExtractKeyPoint(userMessage)
	metadata["expected_key_point"] = ExtractKeyPoint(expectedText)
	metadata["generated_key_point"] = ExtractKeyPoint(generatedText)
	metadata["key_point_method"] = KeyPointMethod
	return metadata
}
