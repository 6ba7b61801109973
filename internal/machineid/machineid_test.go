package machineid

import (
	"regexp"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain hex",
			input: "0123456789abcdef0123456789abcdef",
			want:  "0123456789abcdef0123456789abcdef",
		},
		{
			name:  "uppercase is normalized",
			input: "0123456789ABCDEF0123456789ABCDEF",
			want:  "0123456789abcdef0123456789abcdef",
		},
		{
			name:  "dashed uuid form",
			input: "01234567-89ab-cdef-0123-456789abcdef",
			want:  "0123456789abcdef0123456789abcdef",
		},
		{
			name:    "too short",
			input:   "0123456789abcdef",
			wantErr: true,
		},
		{
			name:    "urn form rejected",
			input:   "urn:uuid:01234567-89ab-cdef-0123-456789abcdef",
			wantErr: true,
		},
		{
			name:    "braced form rejected",
			input:   "{01234567-89ab-cdef-0123-456789abcdef}",
			wantErr: true,
		},
		{
			name:    "non-hex",
			input:   "0123456789abcdef0123456789abcdeg",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got := id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRandom(t *testing.T) {
	a, err := Random()
	if err != nil {
		t.Fatalf("Random() failed: %v", err)
	}
	if a.IsZero() {
		t.Error("Random() returned the zero id")
	}

	b, err := Random()
	if err != nil {
		t.Fatalf("Random() failed: %v", err)
	}
	if a == b {
		t.Error("two Random() calls returned the same id")
	}

	if ok, _ := regexp.MatchString(`^[0-9a-f]{32}$`, a.String()); !ok {
		t.Errorf("String() = %q, not 32 lowercase hex characters", a.String())
	}
}

func TestIsZero(t *testing.T) {
	var id ID
	if !id.IsZero() {
		t.Error("zero value should report IsZero")
	}
}
