package mapping

import (
	"math"
	"testing"

	"sign-stream-service/internal/models"
)

func testDictionary() *Dictionary {
	return New(map[string][]models.Sign{
		"hello":     {{VideoReference: "signs/hello.mp4", DisplayDurationMs: 1500}},
		"thank you": {{VideoReference: "signs/thank-you.mp4", DisplayDurationMs: 1800}},
		"water":     {{VideoReference: "signs/water.mp4", DisplayDurationMs: 1200}},
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  THANK   YOU  ", "thank you"},
		{"don't", "don t"},
		{"", ""},
		{"   ", ""},
		{"...!!!", ""},
		{"a  b\tc\nd", "a b c d"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "thank you", "  a   b  ", "", "¿Qué tal?", "123 abc!"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestMap_ExactMatch(t *testing.T) {
	iv := NewInvoker(testDictionary())

	res, err := iv.Map("Thank You!")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Confidence != 1.0 {
		t.Errorf("exact match confidence = %v, want 1.0", res.Confidence)
	}
	if len(res.Captions) != 1 || res.Captions[0] != "thank you" {
		t.Errorf("captions = %v, want [thank you]", res.Captions)
	}
	if len(res.Signs) != 1 || res.Signs[0].VideoReference != "signs/thank-you.mp4" {
		t.Errorf("signs = %v, want the dictionary entry unchanged", res.Signs)
	}
	if res.OriginalText != "Thank You!" {
		t.Errorf("originalText = %q, want the raw input", res.OriginalText)
	}
}

func TestMap_ExactMatch_PreservesSignOrder(t *testing.T) {
	iv := NewInvoker(New(map[string][]models.Sign{
		"good morning": {
			{VideoReference: "signs/good.mp4", DisplayDurationMs: 1200},
			{VideoReference: "signs/morning.mp4", DisplayDurationMs: 1400},
		},
	}))

	res, err := iv.Map("good morning")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", res.Confidence)
	}
	if len(res.Signs) != 2 ||
		res.Signs[0].VideoReference != "signs/good.mp4" ||
		res.Signs[1].VideoReference != "signs/morning.mp4" {
		t.Errorf("signs out of order: %v", res.Signs)
	}
}

func TestMap_PartialMatch(t *testing.T) {
	iv := NewInvoker(testDictionary())

	// Only "hello" is in the dictionary.
	res, err := iv.Map("hello how are you")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Confidence <= 0 || res.Confidence >= 1 {
		t.Errorf("partial match confidence = %v, want in (0,1)", res.Confidence)
	}
	if len(res.Captions) != 1 || res.Captions[0] != "hello" {
		t.Errorf("captions = %v, want [hello]", res.Captions)
	}
	if len(res.Signs) != 1 || res.Signs[0].VideoReference != "signs/hello.mp4" {
		t.Errorf("signs = %v, want hello only", res.Signs)
	}
}

func TestMap_GreedyLongestFirst(t *testing.T) {
	iv := NewInvoker(New(map[string][]models.Sign{
		"thank you": {{VideoReference: "signs/thank-you.mp4"}},
		"thank":     {{VideoReference: "signs/thank.mp4"}},
		"you":       {{VideoReference: "signs/you.mp4"}},
	}))

	// Not an exact key; greedy must take the longest phrase, and the
	// consumed substring must not re-match its constituent words.
	res, err := iv.Map("well thank you friend")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(res.Captions) != 1 || res.Captions[0] != "thank you" {
		t.Errorf("captions = %v, want [thank you]", res.Captions)
	}
	if len(res.Signs) != 1 || res.Signs[0].VideoReference != "signs/thank-you.mp4" {
		t.Errorf("signs = %v, want the phrase entry only", res.Signs)
	}
	// One phrase match (1.0) over four words.
	if res.Confidence != 0.25 {
		t.Errorf("confidence = %v, want 0.25", res.Confidence)
	}
}

func TestMap_ResidualWordWeight(t *testing.T) {
	iv := NewInvoker(testDictionary())

	// Greedy consumes the first "water" occurrence at weight 1.0; the
	// repeated word is picked up by residual matching at weight 0.8.
	res, err := iv.Map("water water xyzzy")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(res.Captions) != 2 || res.Captions[0] != "water" || res.Captions[1] != "water" {
		t.Errorf("captions = %v, want [water water]", res.Captions)
	}
	if got, want := res.Confidence, 1.8/3.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", got, want)
	}
}

func TestMap_NoMatch_Fallback(t *testing.T) {
	iv := NewInvoker(testDictionary())

	res, err := iv.Map("xyzzy plugh")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Confidence != 0.1 {
		t.Errorf("fallback confidence = %v, want 0.1", res.Confidence)
	}
	if len(res.Captions) != 1 || res.Captions[0] != FallbackGloss {
		t.Errorf("captions = %v, want [%s]", res.Captions, FallbackGloss)
	}
	if len(res.Signs) == 0 {
		t.Error("fallback result must not be empty")
	}
}

func TestMap_EmptyAndWhitespaceInput_Fallback(t *testing.T) {
	iv := NewInvoker(testDictionary())

	for _, in := range []string{"", "   ", "\t\n", "!!!"} {
		res, err := iv.Map(in)
		if err != nil {
			t.Fatalf("Map(%q) failed: %v", in, err)
		}
		if res.Confidence != 0.1 {
			t.Errorf("Map(%q) confidence = %v, want 0.1", in, res.Confidence)
		}
		if len(res.Signs) == 0 || len(res.Captions) == 0 {
			t.Errorf("Map(%q) produced an empty result", in)
		}
	}
}

func TestMap_MalformedInput(t *testing.T) {
	iv := NewInvoker(testDictionary())

	if _, err := iv.Map(string([]byte{0xff, 0xfe, 0xfd})); err != ErrMalformedInput {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestMap_ConfidenceCapped(t *testing.T) {
	iv := NewInvoker(New(map[string][]models.Sign{
		"hello": {{VideoReference: "signs/hello.mp4"}},
	}))

	// Two matches over two words: one greedy (1.0) plus one residual
	// (0.8) would exceed 1.0 without the cap.
	res, err := iv.Map("hello hello")
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Confidence > 1.0 {
		t.Errorf("confidence = %v, must not exceed 1.0", res.Confidence)
	}
}

func TestDictionary_KeyOrderDeterministic(t *testing.T) {
	d := New(map[string][]models.Sign{
		"bb": {{VideoReference: "b.mp4"}},
		"aa": {{VideoReference: "a.mp4"}},
		"ccc": {{VideoReference: "c.mp4"}},
	})

	keys := d.Glosses()
	want := []string{"ccc", "aa", "bb"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v (descending length, lexicographic ties)", keys, want)
		}
	}
}
