package errors

import (
	"testing"
)

func TestValidateContainerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Cat", false},
		{"valid with space", "Walmart Bikes", false},
		{"valid with digits", "Box 42", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"reserved NAN", "NAN", true},
		{"reserved unused lowercase", "unused", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRequest) {
				t.Errorf("ValidateContainerName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRequest)
			}
		})
	}
}

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"typical", 2543, false},
		{"max", MaxWeight, false},
		{"negative", -1, true},
		{"too heavy", MaxWeight + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeight(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeight(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateManifestPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "ShipCase1.txt", false},
		{"nested", "manifests/ShipCase1.txt", false},
		{"upper extension", "SHIP.TXT", false},

		{"empty", "", true},
		{"wrong extension", "ship.csv", true},
		{"null byte", "ship\x00.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
