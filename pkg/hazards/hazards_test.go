package hazards

import "testing"

func TestParseBasename(t *testing.T) {
	tests := []struct {
		name, base, extension string
	}{
		{"NUL.tar.gz", "NUL", ".tar.gz"},
		{"README", "README", ""},
		{"a.b", "a", ".b"},
	}
	for _, test := range tests {
		base, extension := ParseBasename(test.name)
		if base != test.base || extension != test.extension {
			t.Errorf("ParseBasename(%q) = (%q, %q), want (%q, %q)", test.name, base, extension, test.base, test.extension)
		}
	}
}

func TestIsReservedDeviceName(t *testing.T) {
	for _, name := range []string{"NUL", "nul.txt", "Com3", "LPT9.log", "CON.tar.gz"} {
		if !IsReservedDeviceName(name) {
			t.Errorf("expected %q to be reserved", name)
		}
	}
	for _, name := range []string{"README.md", "COM10", "LPT0", "NULL.txt", "CONSOLE"} {
		if IsReservedDeviceName(name) {
			t.Errorf("expected %q not to be reserved", name)
		}
	}
}

func TestHasTrailingDotOrSpace(t *testing.T) {
	for _, name := range []string{"emptydir.", "notempty ", "a.b."} {
		if !HasTrailingDotOrSpace(name) {
			t.Errorf("expected %q to have trailing dot or space", name)
		}
	}
	if HasTrailingDotOrSpace("normal.txt") {
		t.Error("did not expect normal.txt to have trailing dot or space")
	}
}

func TestClassifyReparseShortCircuits(t *testing.T) {
	hazards := Classify("NUL", 500, true)
	if len(hazards) != 1 || hazards[0].Code != ReparsePointPresent {
		t.Errorf("expected only REPARSE_POINT_PRESENT, got %v", hazards)
	}
}

func TestClassifyCombines(t *testing.T) {
	name := "NUL."
	hazards := Classify(name, 300, false)
	codes := make(map[Code]bool)
	for _, h := range hazards {
		codes[h.Code] = true
	}
	for _, want := range []Code{ReservedDeviceBasename, TrailingDotSpace, PathTooLong} {
		if !codes[want] {
			t.Errorf("expected hazard %s, got %v", want, hazards)
		}
	}
}

func TestClassifyClean(t *testing.T) {
	if hazards := Classify("normal.txt", 40, false); len(hazards) != 0 {
		t.Errorf("expected no hazards, got %v", hazards)
	}
}
