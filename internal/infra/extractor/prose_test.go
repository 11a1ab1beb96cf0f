package extractor

import (
	"testing"
)

func TestProseExtractor_ExtractPlaces(t *testing.T) {
	e := NewProse()

	names, err := e.ExtractPlaces("Lebron James plays basketball in Los Angeles.")
	if err != nil {
		t.Fatalf("ExtractPlaces() error = %v", err)
	}

	found := false
	for _, n := range names {
		if n == "Los Angeles" {
			found = true
		}
		if n == "Lebron James" {
			t.Errorf("person entity %q must not be reported as a place", n)
		}
	}
	if !found {
		t.Errorf("ExtractPlaces() = %v, want to contain \"Los Angeles\"", names)
	}
}

func TestProseExtractor_EmptyInput(t *testing.T) {
	e := NewProse()

	for _, text := range []string{"", "   ", "\n\t"} {
		names, err := e.ExtractPlaces(text)
		if err != nil {
			t.Fatalf("ExtractPlaces(%q) error = %v", text, err)
		}
		if len(names) != 0 {
			t.Errorf("ExtractPlaces(%q) = %v, want empty", text, names)
		}
	}
}

func TestProseExtractor_NoDuplicates(t *testing.T) {
	e := NewProse()

	names, err := e.ExtractPlaces("London calling. London again, and once more London.")
	if err != nil {
		t.Fatalf("ExtractPlaces() error = %v", err)
	}

	seen := make(map[string]int)
	for _, n := range names {
		seen[n]++
	}
	for n, count := range seen {
		if count > 1 {
			t.Errorf("name %q reported %d times, want once", n, count)
		}
	}
}

func TestProseExtractor_SortedOutput(t *testing.T) {
	e := NewProse()

	names, err := e.ExtractPlaces("From Tokyo to Berlin and on to Cairo.")
	if err != nil {
		t.Fatalf("ExtractPlaces() error = %v", err)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
			break
		}
	}
}
