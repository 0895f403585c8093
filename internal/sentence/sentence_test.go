package sentence

import (
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	result := Split("", DefaultOptions())
	if result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestSplit_NoMarker(t *testing.T) {
	text := "Just one sentence."
	result := Split(text, DefaultOptions())
	if len(result) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(result))
	}
	if result[0] != text {
		t.Errorf("expected %q, got %q", text, result[0])
	}
}

func TestSplit_Marker(t *testing.T) {
	result := Split("one<BR> two <BR>three", DefaultOptions())
	want := []string{"one", "two", "three"}
	if len(result) != len(want) {
		t.Fatalf("expected %d fragments, got %d", len(want), len(result))
	}
	for i := range want {
		if result[i] != want[i] {
			t.Errorf("fragment %d: expected %q, got %q", i, want[i], result[i])
		}
	}
}

func TestSplit_DropsBlank(t *testing.T) {
	result := Split("<BR>a<BR><BR> <BR>b<BR>", DefaultOptions())
	if len(result) != 2 || result[0] != "a" || result[1] != "b" {
		t.Errorf("expected [a b], got %v", result)
	}
}

func TestSplit_CustomMarker(t *testing.T) {
	result := Split("a|b", Options{Marker: "|"})
	if len(result) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(result))
	}
}

func TestHead(t *testing.T) {
	head, rest := Head("first<BR>second<BR>third", DefaultOptions())
	if head != "first" {
		t.Errorf("expected head 'first', got %q", head)
	}
	if len(rest) != 2 || rest[0] != "second" || rest[1] != "third" {
		t.Errorf("expected rest [second third], got %v", rest)
	}
}

func TestHead_NoMarkerUnchanged(t *testing.T) {
	head, rest := Head("  spaced  ", DefaultOptions())
	if head != "  spaced  " || rest != nil {
		t.Errorf("expected unchanged text, got %q %v", head, rest)
	}
}

func TestHead_MarkersOnly(t *testing.T) {
	head, rest := Head("<BR> <BR>", DefaultOptions())
	if head != "" || len(rest) != 0 {
		t.Errorf("expected empty head, got %q %v", head, rest)
	}
}
