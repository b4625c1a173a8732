package mapping

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"sign-stream-service/internal/models"
)

// ErrMalformedInput is returned for non-text input. All no-match cases
// are successful low-confidence results, never errors.
var ErrMalformedInput = errors.New("mapping: malformed input text")

// Weights and the fallback confidence mirror the lookup contract:
// whole-phrase matches count 1.0, residual single words 0.8, and a
// zero-match result is substituted with the fallback at 0.1.
const (
	phraseWeight       = 1.0
	wordWeight         = 0.8
	fallbackConfidence = 0.1
)

// Invoker performs text-to-sign lookups against one dictionary snapshot.
// Pure: no side effects, safe for concurrent use.
type Invoker struct {
	dict *Dictionary
}

// NewInvoker creates an invoker over the given dictionary.
func NewInvoker(d *Dictionary) *Invoker {
	return &Invoker{dict: d}
}

// Normalize lowercases, strips punctuation and collapses internal
// whitespace. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Map turns finalized transcript text into a MappingResult.
//
// Lookup order: exact phrase, then greedy phrase consumption over keys
// sorted longest-first (lexicographic for equal lengths), then residual
// single words. Confidence is the accumulated match weight divided by
// the word count of the normalized input, capped at 1.0.
func (iv *Invoker) Map(text string) (models.MappingResult, error) {
	if !utf8.ValidString(text) {
		return models.MappingResult{}, ErrMalformedInput
	}

	norm := Normalize(text)
	words := strings.Fields(norm)

	result := models.MappingResult{OriginalText: text}

	if len(words) == 0 {
		return iv.fallback(result), nil
	}

	// Exact phrase match short-circuits at full confidence.
	if signs, ok := iv.dict.Lookup(norm); ok {
		result.Signs = append(result.Signs, signs...)
		result.Captions = []string{norm}
		result.Confidence = 1.0
		return result, nil
	}

	var weight float64
	remaining := norm

	// Greedy phrase matching: longest keys first, each consumed at
	// most once. The matched substring is cut out of the remaining
	// text so shorter overlapping keys cannot re-match it.
	for _, key := range iv.dict.keys {
		if !strings.Contains(remaining, key) {
			continue
		}
		signs, _ := iv.dict.Lookup(key)
		result.Signs = append(result.Signs, signs...)
		result.Captions = append(result.Captions, key)
		weight += phraseWeight
		remaining = consume(remaining, key)
	}

	// Residual word matching at reduced weight.
	for _, word := range strings.Fields(remaining) {
		signs, ok := iv.dict.Lookup(word)
		if !ok {
			continue
		}
		result.Signs = append(result.Signs, signs...)
		result.Captions = append(result.Captions, word)
		weight += wordWeight
	}

	if weight == 0 {
		return iv.fallback(result), nil
	}

	result.Confidence = weight / float64(len(words))
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	return result, nil
}

// fallback substitutes the reserved no-match entry so results are never
// empty.
func (iv *Invoker) fallback(result models.MappingResult) models.MappingResult {
	result.Signs = iv.dict.Fallback()
	result.Captions = []string{FallbackGloss}
	result.Confidence = fallbackConfidence
	return result
}

// consume removes the first occurrence of key from text, replacing it
// with a space so the surrounding fragments stay separate words, and
// re-collapses whitespace.
func consume(text, key string) string {
	rest := strings.Replace(text, key, " ", 1)
	return strings.Join(strings.Fields(rest), " ")
}
