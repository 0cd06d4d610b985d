package errors

import (
	"strings"
	"testing"
)

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid domain", "example.com", false},
		{"valid url", "https://example.com/page", false},
		{"valid with path", "example.com/deep/path", false},
		{"surrounding whitespace trimmed", "  example.com  ", false},

		{"empty", "", true},
		{"only whitespace", "   ", true},
		{"embedded space", "example .com", true},
		{"null byte", "example.com\x00", true},
		{"control char", "exam\x01ple.com", true},
		{"newline", "example.com\n", true},
		{"too long", strings.Repeat("a", 2049), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTarget(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTarget) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidTarget)
			}
		})
	}
}

func TestValidateTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"full timestamp", "20200101000000", false},
		{"year only", "2020", false},
		{"year-month", "202001", false},
		{"year-month-day", "20200101", false},

		{"empty", "", true},
		{"too short", "202", true},
		{"too long", "202001010000001", true},
		{"dashes", "2020-01-01", true},
		{"letters", "timestamp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com", false},
		{"http", "http://example.com", false},

		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"ftp scheme", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"positive", 10, false},
		{"one", 1, false},
		{"max", 10000, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"over max", 10001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLimit(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
