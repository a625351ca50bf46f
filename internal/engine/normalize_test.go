package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"trims", "  IMB/12345/X  ", "IMB/12345/X"},
		{"nan literal", "nan", ""},
		{"NaN mixed case", "NaN", ""},
		{"none", "None", ""},
		{"null", "null", ""},
		{"excel na", "#N/A", ""},
		{"regular value kept", "12 bis", "12 bis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestComposeAddress(t *testing.T) {
	tests := []struct {
		name      string
		number    string
		responder string
		label     string
		want      string
	}{
		{"all three", "10", "B", "Main St", "10 B Main St"},
		{"responder empty", "10", "", "Main St", "10 Main St"},
		{"only number", "10", "", "", "10"},
		{"only label", "", "", "Main St", "Main St"},
		{"all empty", "", "", "", ""},
		{"nan never leaks", "10", "nan", "Main St", "10 Main St"},
		{"all nan", "nan", "NaN", "nan", ""},
		{"trims components", " 10 ", "", " Main St ", "10 Main St"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeAddress(tt.number, tt.responder, tt.label))
		})
	}
}

func TestComposeAddressDeterministic(t *testing.T) {
	a := ComposeAddress("12", "resp", "Rue de la Paix")
	b := ComposeAddress("12", "resp", "Rue de la Paix")
	assert.Equal(t, a, b)
}
