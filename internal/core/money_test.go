package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"integer", "120", 12000, false},
		{"single decimal", "5.5", 550, false},
		{"third decimal rounds down", "12.344", 1234, false},
		{"third decimal rounds up", "12.345", 1235, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", "  9.99 ", 999, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"negative", "-5", 0, true},
		{"explicit plus", "+5", 0, true},
		{"letters", "12a.30", 0, true},
		{"two dots", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	if got := (Money{Cents: 123456}).String(); got != "1234.56" {
		t.Errorf("String() = %q, want %q", got, "1234.56")
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Errorf("String() = %q, want %q", got, "0.05")
	}
}

func TestFromUnits(t *testing.T) {
	if got := FromUnits(12.345); got.Cents != 1235 {
		t.Errorf("FromUnits(12.345) = %d cents, want 1235", got.Cents)
	}
	if got := FromUnits(100); got.Cents != 10000 {
		t.Errorf("FromUnits(100) = %d cents, want 10000", got.Cents)
	}
}
