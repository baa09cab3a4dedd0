package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input  string
		region string
		want   string
	}{
		{"(415) 555-2671", "US", "+14155552671"},
		{"+1 415 555 2671", "", "+14155552671"},
		{"06 12345678", "NL", "+31612345678"},
		{"555-0100", "US", "555-0100"},
		{"  not a number ", "US", "not a number"},
		{"", "US", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input, tc.region); got != tc.want {
			t.Fatalf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
		}
	}
}

func TestAreaCode(t *testing.T) {
	if got := AreaCode("+14155552671", ""); got != "415" {
		t.Fatalf("expected area code 415, got %q", got)
	}
	if got := AreaCode("garbage", "US"); got != "" {
		t.Fatalf("expected empty area code, got %q", got)
	}
}
