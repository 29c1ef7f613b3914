package services

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		expect string
	}{
		{"zero", 0, "$0.00"},
		{"under a thousand", 999.5, "$999.50"},
		{"thousands", 1234.56, "$1,234.56"},
		{"millions", 1234567.89, "$1,234,567.89"},
		{"exact grouping boundary", 1000, "$1,000.00"},
		{"negative", -4200, "-$4,200.00"},
		{"rounding", 0.005, "$0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUSD(tt.amount); got != tt.expect {
				t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.expect)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		expect string
	}{
		{"whole", 8, "8%"},
		{"one decimal", 7.5, "7.5%"},
		{"two decimals", 7.25, "7.25%"},
		{"zero", 0, "0%"},
		{"trailing zero trimmed", 10.10, "10.1%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.rate); got != tt.expect {
				t.Errorf("FormatPercent(%v) = %q, want %q", tt.rate, got, tt.expect)
			}
		})
	}
}
