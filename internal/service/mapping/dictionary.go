// Package mapping turns finalized transcript text into ranked sequences
// of sign-language video references.
package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"sign-stream-service/internal/models"
)

// FallbackGloss is the reserved dictionary key substituted when a lookup
// matches nothing. Results are never empty.
const FallbackGloss = "NOT-UNDERSTAND"

// Dictionary is an immutable gloss-to-signs snapshot. Loaded once at
// startup; safe for concurrent readers without locking.
type Dictionary struct {
	entries map[string][]models.Sign
	// keys sorted by descending length, ascending lexicographic for
	// equal lengths. Greedy matching depends on this order being
	// deterministic.
	keys []string
}

// New builds a dictionary from a gloss-to-signs map. Keys are expected
// to be normalized already (lowercase, no punctuation).
func New(entries map[string][]models.Sign) *Dictionary {
	d := &Dictionary{entries: make(map[string][]models.Sign, len(entries))}
	for gloss, signs := range entries {
		norm := Normalize(gloss)
		if norm == "" || len(signs) == 0 {
			continue
		}
		d.entries[norm] = signs
	}
	d.keys = make([]string, 0, len(d.entries))
	for k := range d.entries {
		d.keys = append(d.keys, k)
	}
	sort.Slice(d.keys, func(i, j int) bool {
		if len(d.keys[i]) != len(d.keys[j]) {
			return len(d.keys[i]) > len(d.keys[j])
		}
		return d.keys[i] < d.keys[j]
	})
	return d
}

// Load reads a JSON dictionary file mapping gloss to sign clips.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	var raw map[string][]models.Sign
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return New(raw), nil
}

// Default returns the built-in vocabulary used when no dictionary file
// is configured.
func Default() *Dictionary {
	return New(map[string][]models.Sign{
		"hello":        {{VideoReference: "signs/hello.mp4", DisplayDurationMs: 1500}},
		"thank you":    {{VideoReference: "signs/thank-you.mp4", DisplayDurationMs: 1800}},
		"please":       {{VideoReference: "signs/please.mp4", DisplayDurationMs: 1400}},
		"yes":          {{VideoReference: "signs/yes.mp4", DisplayDurationMs: 1000}},
		"no":           {{VideoReference: "signs/no.mp4", DisplayDurationMs: 1000}},
		"good morning": {{VideoReference: "signs/good.mp4", DisplayDurationMs: 1200}, {VideoReference: "signs/morning.mp4", DisplayDurationMs: 1400}},
		"good":         {{VideoReference: "signs/good.mp4", DisplayDurationMs: 1200}},
		"morning":      {{VideoReference: "signs/morning.mp4", DisplayDurationMs: 1400}},
		"help":         {{VideoReference: "signs/help.mp4", DisplayDurationMs: 1600}},
		"sorry":        {{VideoReference: "signs/sorry.mp4", DisplayDurationMs: 1500}},
		"name":         {{VideoReference: "signs/name.mp4", DisplayDurationMs: 1300}},
		"how are you":  {{VideoReference: "signs/how-are-you.mp4", DisplayDurationMs: 2000}},
		"goodbye":      {{VideoReference: "signs/goodbye.mp4", DisplayDurationMs: 1500}},
		"water":        {{VideoReference: "signs/water.mp4", DisplayDurationMs: 1200}},
		"eat":          {{VideoReference: "signs/eat.mp4", DisplayDurationMs: 1200}},
		FallbackGloss:  {{VideoReference: "signs/not-understand.mp4", DisplayDurationMs: 2000}},
	})
}

// Lookup returns the sign sequence for an exact normalized key.
func (d *Dictionary) Lookup(key string) ([]models.Sign, bool) {
	signs, ok := d.entries[key]
	return signs, ok
}

// Fallback returns the reserved no-match entry. A dictionary without an
// explicit fallback key still produces one.
func (d *Dictionary) Fallback() []models.Sign {
	if signs, ok := d.entries[Normalize(FallbackGloss)]; ok {
		return signs
	}
	return []models.Sign{{VideoReference: "signs/not-understand.mp4", DisplayDurationMs: 2000}}
}

// Glosses returns all dictionary keys, longest first.
func (d *Dictionary) Glosses() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
