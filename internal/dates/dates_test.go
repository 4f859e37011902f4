package dates

import "testing"

func TestParseInput(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"01/03/2024", "2024-03-01", false},
		{"2024-03-01", "2024-03-01", false},
		{"31/12/1999", "1999-12-31", false},
		{"", "", false},
		{"not a date", "", true},
		{"32/01/2024", "", true},
		{"2024-13-01", "", true},
	}
	for _, tt := range tests {
		got, err := ParseInput(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseInput(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInput(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("2024-03-01"); got != "01/03/2024" {
		t.Errorf("Format = %q, want 01/03/2024", got)
	}
	if got := Format(""); got != "" {
		t.Errorf("Format empty = %q", got)
	}
	// Historic free-text values pass through untouched.
	if got := Format("spring 2019"); got != "spring 2019" {
		t.Errorf("Format free-text = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	canonical, err := ParseInput("05/11/2023")
	if err != nil {
		t.Fatal(err)
	}
	if Format(canonical) != "05/11/2023" {
		t.Errorf("round trip = %q", Format(canonical))
	}
}
