package parser

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// testEngine returns an engine with a deterministic ID sequence.
func testEngine() *Engine {
	n := 0
	return NewEngine(func() string {
		n++
		return fmt.Sprintf("seg-%d", n)
	})
}

func checkOrderContiguity(t *testing.T, segs []Segment) {
	t.Helper()
	for i, s := range segs {
		if s.Order != i {
			t.Errorf("segment %d has order %d, want %d", i, s.Order, i)
		}
	}
}

func TestSegmentMonolingual(t *testing.T) {
	e := testEngine()

	segs, err := e.Segment("Dr. Smith went home. He was tired.", "en")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	checkOrderContiguity(t, segs)

	if got := segs[0].Block["en"].Text(); got != "Dr. Smith went home." {
		t.Errorf("first segment = %q, want %q", got, "Dr. Smith went home.")
	}
	if got := segs[1].Block["en"].Text(); got != "He was tired." {
		t.Errorf("second segment = %q, want %q", got, "He was tired.")
	}
	if segs[0].ID == "" || segs[0].ID == segs[1].ID {
		t.Errorf("segment IDs must be unique and non-empty: %q, %q", segs[0].ID, segs[1].ID)
	}
}

func TestSegmentDecimalProtection(t *testing.T) {
	segs, err := testEngine().Segment("The value is 3.14 today.", "en")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if got := segs[0].Block["en"].Text(); got != "The value is 3.14 today." {
		t.Errorf("segment = %q", got)
	}
}

func TestSegmentMonolingualStructure(t *testing.T) {
	raw := "# A Walk\n\nDr. Smith went home. He was tired.\n- a list item"

	segs, err := testEngine().Segment(raw, "en")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d: %+v", len(segs), segs)
	}
	checkOrderContiguity(t, segs)

	if segs[0].Prefix != "# " {
		t.Errorf("heading prefix = %q, want %q", segs[0].Prefix, "# ")
	}
	// The paragraph break leaves one newline on the heading's suffix and
	// carries one into the next segment's prefix.
	if segs[0].Suffix != "\n" {
		t.Errorf("heading suffix = %q, want %q", segs[0].Suffix, "\n")
	}
	if segs[1].Prefix != "\n" {
		t.Errorf("paragraph prefix = %q, want %q", segs[1].Prefix, "\n")
	}
	// Mid-line sentence carries no structural markup.
	if segs[2].Prefix != "" || segs[2].Suffix != "" {
		t.Errorf("inner sentence prefix/suffix = %q/%q, want empty", segs[2].Prefix, segs[2].Suffix)
	}
	if segs[3].Prefix != "- " {
		t.Errorf("list prefix = %q, want %q", segs[3].Prefix, "- ")
	}
}

func TestSegmentBilingualSentence(t *testing.T) {
	segs, err := testEngine().Segment("Hello world {Xin chào thế giới}. Goodbye {Tạm biệt}.", "en-vi")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	checkOrderContiguity(t, segs)

	first := segs[0]
	if first.Block["en"].Text() != "Hello world" {
		t.Errorf("primary = %q, want %q", first.Block["en"].Text(), "Hello world")
	}
	if first.Block["vi"].Text() != "Xin chào thế giới" {
		t.Errorf("secondary = %q, want %q", first.Block["vi"].Text(), "Xin chào thế giới")
	}
	if first.Suffix != "." {
		t.Errorf("suffix = %q, want %q", first.Suffix, ".")
	}
	if segs[1].Block["en"].Text() != "Goodbye" || segs[1].Block["vi"].Text() != "Tạm biệt" {
		t.Errorf("second segment = %+v", segs[1].Block)
	}
}

func TestSegmentBilingualPhrase(t *testing.T) {
	segs, err := testEngine().Segment("red, blue, green {đỏ, xanh, lục}", "en-vi-ph")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}

	block := segs[0].Block
	if got := block["en"].Phrases(); !reflect.DeepEqual(got, []string{"red", "blue", "green"}) {
		t.Errorf("primary phrases = %q", got)
	}
	if got := block["vi"].Phrases(); !reflect.DeepEqual(got, []string{"đỏ", "xanh", "lục"}) {
		t.Errorf("secondary phrases = %q", got)
	}
}

func TestSegmentBilingualPhraseWithoutAnnotation(t *testing.T) {
	segs, err := testEngine().Segment("uno, dos, tres", "es-en-ph")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}

	block := segs[0].Block
	if got := block["es"].Phrases(); !reflect.DeepEqual(got, []string{"uno", "dos", "tres"}) {
		t.Errorf("primary phrases = %q", got)
	}
	// The secondary key is present with an empty list.
	sec, ok := block["en"]
	if !ok {
		t.Fatal("secondary language key missing")
	}
	if !sec.IsPhrases() || len(sec.Phrases()) != 0 {
		t.Errorf("secondary = %+v, want empty phrase list", sec)
	}
}

func TestSegmentUnterminatedDelimiter(t *testing.T) {
	segs, err := testEngine().Segment("Hello {unfinished", "en-vi")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Block["en"].Text() != "Hello" || segs[0].Block["vi"].Text() != "unfinished" {
		t.Errorf("segment block = %+v", segs[0].Block)
	}
	if segs[0].Suffix != "" {
		t.Errorf("suffix = %q, want empty", segs[0].Suffix)
	}
}

func TestSegmentValidation(t *testing.T) {
	for _, descriptor := range []string{"", "   ", "-vi"} {
		segs, err := testEngine().Segment("anything", descriptor)
		if !errors.Is(err, ErrEmptyOrigin) {
			t.Errorf("Segment(%q) error = %v, want ErrEmptyOrigin", descriptor, err)
		}
		if segs != nil {
			t.Errorf("Segment(%q) returned segments alongside an error", descriptor)
		}
	}
}

func TestSegmentFallback(t *testing.T) {
	// Nothing here parses as an annotated unit, so the strategy yields no
	// segments and the facade falls back to the verbatim raw text.
	raw := "\n\n\n"
	segs, err := testEngine().Segment(raw, "en-vi")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected exactly 1 fallback segment, got %d", len(segs))
	}
	seg := segs[0]
	if seg.Order != 0 || seg.Prefix != "" || seg.Suffix != "" {
		t.Errorf("fallback segment = %+v", seg)
	}
	if got := seg.Block["en"].Text(); got != raw {
		t.Errorf("fallback primary = %q, want raw input %q", got, raw)
	}
}

func TestSegmentCompleteness(t *testing.T) {
	inputs := []string{
		"plain",
		"# only a heading",
		"{}",
		"   ",
		"。。。",
		strings.Repeat("a. ", 50),
	}
	for _, raw := range inputs {
		for _, descriptor := range []string{"en", "en-vi", "en-vi-ph"} {
			segs, err := testEngine().Segment(raw, descriptor)
			if err != nil {
				t.Fatalf("Segment(%q, %q) error = %v", raw, descriptor, err)
			}
			if len(segs) == 0 {
				t.Errorf("Segment(%q, %q) returned no segments", raw, descriptor)
			}
			checkOrderContiguity(t, segs)
		}
	}
}
