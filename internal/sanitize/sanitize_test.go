package sanitize

import (
	"strings"
	"testing"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "MyProject", "myproject"},
		{"spaces and punctuation", "My Project!", "my-project"},
		{"project id", "Xq3v_9Tf-Wk1", "xq3v_9tf-wk1"},
		{"base64url id stays intact", "a-_b", "a-_b"},
		{"collapse", "a  //  b", "a-b"},
		{"trim", "--x--", "x"},
		{"empty", "", DefaultIdentifier},
		{"only symbols", "!!!", DefaultIdentifier},
		{"unicode", "café", "caf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identifier(tt.input); got != tt.want {
				t.Errorf("Identifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentifier_LengthLimit(t *testing.T) {
	long := strings.Repeat("abc", 40)
	got := Identifier(long)
	if len(got) != MaxIdentifierLength {
		t.Errorf("len = %d, want %d", len(got), MaxIdentifierLength)
	}
	if Identifier(long) != got {
		t.Error("truncation must be deterministic")
	}
	if Identifier(long+"x") == got {
		t.Error("different inputs must keep different suffixes")
	}
}
