package slots

import (
	"sort"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		close    string
		expected []string
	}{
		{
			name:  "standard day",
			open:  "10:00",
			close: "12:00",
			expected: []string{
				"10:00", "10:30", "11:00", "11:30",
			},
		},
		{
			name:  "close on half hour",
			open:  "18:00",
			close: "19:30",
			expected: []string{
				"18:00", "18:30", "19:00",
			},
		},
		{
			name:     "open equals close",
			open:     "10:00",
			close:    "10:00",
			expected: nil,
		},
		{
			name:  "overnight wraps past midnight",
			open:  "23:00",
			close: "02:00",
			expected: []string{
				"23:00", "23:30", "00:00", "00:30", "01:00", "01:30",
			},
		},
		{
			name:  "overnight close on quarter keeps on-the-hour mark",
			open:  "23:00",
			close: "01:15",
			expected: []string{
				"23:00", "23:30", "00:00", "00:30", "01:00",
			},
		},
		{
			name:  "off-grid open time",
			open:  "10:15",
			close: "11:30",
			expected: []string{
				"10:15", "10:45", "11:15",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.open, tt.close)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d slots, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("slot %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestGenerateIsStrictlyIncreasing(t *testing.T) {
	got, err := Generate("09:00", "22:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected slots")
	}
	if got[0] != "09:00" {
		t.Errorf("expected first slot 09:00, got %s", got[0])
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("slots not in ascending order: %v", got)
	}
	if got[len(got)-1] != "21:30" {
		t.Errorf("expected last slot 21:30, got %s", got[len(got)-1])
	}
}

func TestGenerateInvalidInput(t *testing.T) {
	if _, err := Generate("25:00", "22:00"); err == nil {
		t.Error("expected error for out-of-range hour")
	}
	if _, err := Generate("10:00", "2200"); err == nil {
		t.Error("expected error for malformed close time")
	}
}

func TestGenerateDefault(t *testing.T) {
	got := GenerateDefault()
	// 10:00 through 21:30 at half-hour spacing.
	if len(got) != 24 {
		t.Fatalf("expected 24 default slots, got %d", len(got))
	}
	if got[0] != "10:00" || got[len(got)-1] != "21:30" {
		t.Errorf("unexpected default slot bounds: %s .. %s", got[0], got[len(got)-1])
	}
}
