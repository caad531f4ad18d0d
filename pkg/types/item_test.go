package types

import "testing"

func TestItem_Text(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "label and value",
			item: Item{Label: "PWR:", Value: "12.34 W-"},
			want: "PWR: 12.34 W-",
		},
		{
			name: "no label",
			item: Item{Value: "0.00 W"},
			want: "0.00 W",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
