package format

import "testing"

func TestRate(t *testing.T) {
	tests := []struct {
		name       string
		milliwatts float64
		precision  Precision
		want       string
	}{
		{name: "charging", milliwatts: 12500, precision: Decimal, want: "12.50 W+"},
		{name: "discharging", milliwatts: -5000, precision: Decimal, want: "5.00 W-"},
		{name: "zero", milliwatts: 0, precision: Decimal, want: "0.00 W"},
		{name: "fractional average", milliwatts: -7333.3333, precision: Decimal, want: "7.33 W-"},
		{name: "integer charging rounds half up", milliwatts: 12500, precision: Integer, want: "13 W+"},
		{name: "integer discharging", milliwatts: -5400, precision: Integer, want: "5 W-"},
		{name: "integer zero", milliwatts: 0, precision: Integer, want: "0 W"},
		{name: "integer tiny charge", milliwatts: 300, precision: Integer, want: "0 W"},
		{name: "integer tiny discharge", milliwatts: -300, precision: Integer, want: "0 W"},
		{name: "integer half watt discharge", milliwatts: -500, precision: Integer, want: "1 W-"},
		{name: "decimal tiny discharge", milliwatts: -300, precision: Decimal, want: "0.30 W-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.milliwatts, tt.precision); got != tt.want {
				t.Errorf("Rate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEstimate(t *testing.T) {
	if got := Estimate(15); got != "15.00 W" {
		t.Errorf("Estimate() = %q, want %q", got, "15.00 W")
	}
}

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Precision
		wantErr bool
	}{
		{in: "decimal", want: Decimal},
		{in: "integer", want: Integer},
		{in: "hex", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrecision(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrecision() error = %v, wantErr %t", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePrecision() = %q, want %q", got, tt.want)
			}
		})
	}
}
