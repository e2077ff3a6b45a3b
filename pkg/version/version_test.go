package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    ProtocolVersion
		wantErr bool
	}{
		{"1.0", ProtocolVersion{Major: 1, Minor: 0}, false},
		{"2.15", ProtocolVersion{Major: 2, Minor: 15}, false},
		{"0.1", ProtocolVersion{Major: 0, Minor: 1}, false},
		{"1", ProtocolVersion{}, true},
		{"1.0.0", ProtocolVersion{}, true},
		{"a.b", ProtocolVersion{}, true},
		{"1.", ProtocolVersion{}, true},
		{".0", ProtocolVersion{}, true},
		{"", ProtocolVersion{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	v := ProtocolVersion{Major: 1, Minor: 2}
	if got := v.String(); got != "1.2" {
		t.Errorf("String() = %q, want %q", got, "1.2")
	}
}

func TestCompatible(t *testing.T) {
	v10 := ProtocolVersion{Major: 1, Minor: 0}
	v13 := ProtocolVersion{Major: 1, Minor: 3}
	v20 := ProtocolVersion{Major: 2, Minor: 0}

	if !v10.Compatible(v13) {
		t.Error("1.0 should be compatible with 1.3")
	}
	if v10.Compatible(v20) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestCurrentParses(t *testing.T) {
	if _, err := Parse(Current); err != nil {
		t.Errorf("Current %q does not parse: %v", Current, err)
	}
}
