package device

import "testing"

func TestSMCStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    []byte
		voltage    []byte
		acPower    []byte
		wantRate   int32
		wantOnLine bool
	}{
		{
			name:       "discharging 2A at 12.5V",
			current:    []byte{0x30, 0xf8}, // -2000
			voltage:    []byte{0xd4, 0x30}, // 12500
			acPower:    []byte{0x00},
			wantRate:   -25000,
			wantOnLine: false,
		},
		{
			name:       "charging 1A at 12V",
			current:    []byte{0xe8, 0x03}, // 1000
			voltage:    []byte{0xe0, 0x2e}, // 12000
			acPower:    []byte{0x01},
			wantRate:   12000,
			wantOnLine: true,
		},
		{
			name:       "malformed values",
			current:    []byte{0x01},
			voltage:    nil,
			acPower:    nil,
			wantRate:   0,
			wantOnLine: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := smcStatus(tt.current, tt.voltage, tt.acPower)
			if got.Rate != tt.wantRate {
				t.Errorf("Rate = %d, want %d", got.Rate, tt.wantRate)
			}
			if got.OnLine() != tt.wantOnLine {
				t.Errorf("OnLine() = %t, want %t", got.OnLine(), tt.wantOnLine)
			}
		})
	}
}
