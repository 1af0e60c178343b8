package pipeline

import "testing"

func TestNormalizeCadence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", DefaultCadence},
		{"whitespace", "   ", DefaultCadence},
		{"valid hourly", "0 * * * *", "0 * * * *"},
		{"valid step", "*/15 * * * *", "*/15 * * * *"},
		{"valid daily", "30 9 * * 1", "30 9 * * 1"},
		{"too few fields", "* * *", DefaultCadence},
		{"too many fields", "* * * * * *", DefaultCadence},
		{"minute out of range", "61 * * * *", DefaultCadence},
		{"hour out of range", "0 24 * * *", DefaultCadence},
		{"weekday out of range", "0 0 * * 7", DefaultCadence},
		{"garbage", "whenever", DefaultCadence},
		{"zero step", "*/0 * * * *", DefaultCadence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCadence(tc.in); got != tc.want {
				t.Fatalf("NormalizeCadence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
