package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Onboarding", false},
		{"valid unicode", "Café tour", false},
		{"padded", "  Demo  ", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("x", 201), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "What do you want to learn?", false},
		{"multi line", "Line one\nLine two", false},
		{"crlf", "Yes, go left\r\nthen right", false},
		{"bare cr", "Yes\rno", false},
		{"tab", "a\tb", false},

		{"empty", "", true},
		{"blank", " \t ", true},
		{"too long", strings.Repeat("a", 2001), true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("question", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var fe *FieldError
				if !errors.As(err, &fe) || fe.Field != "question" {
					t.Errorf("error = %#v, want FieldError on question", err)
				}
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"plain", "plain"},
		{"  padded\r\n", "padded"},
		{"Yes, go left\r\nthen right", "Yes, go left\nthen right"},
		{"a\rb\r\n\r\nc", "a\nb\n\nc"},
		{"a\nb", "a\nb"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.input); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateVideoFile(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantErr     bool
	}{
		{"mp4 by extension", "intro.mp4", "", false},
		{"mov by extension", "clip.MOV", "", false},
		{"explicit video type", "upload.bin", "video/webm", false},
		{"video type with params", "a.mp4", "video/mp4; codecs=avc1", false},

		{"no file", "", "", true},
		{"image", "poster.png", "", true},
		{"text", "notes.txt", "", true},
		{"no extension", "video", "", true},
		{"explicit non-video", "intro.mp4", "application/pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoFile(tt.filename, tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVideoFile(%q, %q) error = %v, wantErr %v", tt.filename, tt.contentType, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "example.com", false},
		{"subdomain", "www.shop.example.co.uk", false},
		{"localhost with port", "localhost:3000", false},

		{"empty", "", true},
		{"with scheme", "https://example.com", true},
		{"with path", "example.com/embed", true},
		{"leading dash", "-bad.com", true},
		{"space", "exa mple.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomain(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "ana@example.com", false},

		{"empty", "", true},
		{"no at", "ana.example.com", true},
		{"display name", "Ana <ana@example.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}

	if ValidatePassword("") == nil {
		t.Error("ValidatePassword(\"\") should fail")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://api.videofonik.com", false},
		{"http with port", "http://localhost:8000", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"javascript", "javascript:alert(1)", true},
		{"no host", "https://", true},
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
