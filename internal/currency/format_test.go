package currency

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		code   string
		want   string
	}{
		{"whole euros", 150000, "EUR", "1500.00"},
		{"with cents", 123456, "USD", "1234.56"},
		{"single cent", 1, "USD", "0.01"},
		{"zero", 0, "EUR", "0.00"},
		{"negative", -800, "USD", "-8.00"},
		{"zero decimal currency", 1500, "JPY", "1500"},
		{"negative zero decimal", -1500, "KRW", "-1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.amount, tt.code); got != tt.want {
				t.Errorf("Format(%d, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits("EUR"); got != 2 {
		t.Errorf("MinorUnits(EUR) = %d, want 2", got)
	}
	if got := MinorUnits("JPY"); got != 0 {
		t.Errorf("MinorUnits(JPY) = %d, want 0", got)
	}
}

func TestFormatWithCode(t *testing.T) {
	if got := FormatWithCode(150000, "EUR"); got != "1500.00 EUR" {
		t.Errorf("FormatWithCode = %q", got)
	}
}
