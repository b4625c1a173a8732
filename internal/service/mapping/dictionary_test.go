package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dictionary.json")
	data := `{
		"hello": [{"videoReference": "signs/hello.mp4", "displayDurationMs": 1500}],
		"Thank You": [{"videoReference": "signs/thank-you.mp4", "displayDurationMs": 1800}]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
	// Keys are normalized on load.
	if _, ok := d.Lookup("thank you"); !ok {
		t.Error("expected normalized key 'thank you' to resolve")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing dictionary file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed dictionary file")
	}
}

func TestDefault_HasFallbackEntry(t *testing.T) {
	d := Default()
	if d.Len() == 0 {
		t.Fatal("default dictionary is empty")
	}
	if signs := d.Fallback(); len(signs) == 0 {
		t.Error("fallback entry must not be empty")
	}
}
