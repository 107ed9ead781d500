package recommend

import (
	"math/rand"
	"strings"
	"testing"
)

func TestDeriveKeyIgnoresFieldOrder(t *testing.T) {
	fields := []struct {
		name  string
		value any
	}{
		{"goal", "strength"},
		{"days", 4},
		{"experience", "beginner"},
		{"equipment", []any{"barbell", "dumbbell"}},
		{"injuries", nil},
		{"session_minutes", 60.0},
	}

	base := Context{}
	for _, f := range fields {
		base[f.name] = f.value
	}
	want := DeriveKey("owner-1", base)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 1000; trial++ {
		shuffled := make([]int, len(fields))
		for i := range shuffled {
			shuffled[i] = i
		}
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		c := Context{}
		for _, idx := range shuffled {
			c[fields[idx].name] = fields[idx].value
		}
		if got := DeriveKey("owner-1", c); got != want {
			t.Fatalf("trial %d: key mismatch for permuted context: %s != %s", trial, got, want)
		}
	}
}

func TestDeriveKeyIsScopedByOwner(t *testing.T) {
	c := Context{"goal": "strength"}
	if DeriveKey("owner-1", c) == DeriveKey("owner-2", c) {
		t.Fatal("keys must differ across owners")
	}
}

func TestDeriveKeyDistinguishesValues(t *testing.T) {
	a := DeriveKey("owner-1", Context{"goal": "strength"})
	b := DeriveKey("owner-1", Context{"goal": "endurance"})
	if a == b {
		t.Fatal("different contexts must produce different keys")
	}
}

func TestFingerprintNormalizesAbsentValues(t *testing.T) {
	if Fingerprint(Context{"a": 1, "b": nil}) != Fingerprint(Context{"b": nil, "a": 1}) {
		t.Fatal("nil values must fingerprint identically regardless of order")
	}
	got := Fingerprint(Context{"b": nil, "a": 1})
	want := "a=1&b=null"
	if got != want {
		t.Fatalf("Fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprintOrdersNestedMaps(t *testing.T) {
	a := Fingerprint(Context{"prefs": map[string]any{"x": 1, "y": 2}})
	b := Fingerprint(Context{"prefs": map[string]any{"y": 2, "x": 1}})
	if a != b {
		t.Fatalf("nested maps must serialize canonically: %q != %q", a, b)
	}
}

func TestFingerprintDegradesUnencodableValuesToNull(t *testing.T) {
	got := Fingerprint(Context{"bad": func() {}})
	if got != "bad=null" {
		t.Fatalf("Fingerprint = %q, want bad=null", got)
	}
}

func TestDeriveKeyIsStableAcrossCalls(t *testing.T) {
	c := Context{"goal": "strength", "days": 5}
	first := DeriveKey("owner-1", c)
	for i := 0; i < 10; i++ {
		if got := DeriveKey("owner-1", c); got != first {
			t.Fatalf("call %d: key changed: %s != %s", i, got, first)
		}
	}
	if !strings.HasPrefix(first, "rec:owner-1:") {
		t.Fatalf("unexpected key format: %s", first)
	}
}
