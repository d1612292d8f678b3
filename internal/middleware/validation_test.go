package middleware

import (
	"strings"
	"testing"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

func TestValidateVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid short", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"valid with dash", "abc-def_123", "abc-def_123", false},
		{"trims whitespace", "  abc  ", "abc", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"exactly 64", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"invalid chars", "abc def", "", true},
		{"sql injection", "a'; DROP--", "", true},
		{"unicode", "abcédef", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateVideoID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid private ID", "local-user-id-with-plenty-of-entropy", false},
		{"empty", "", true},
		{"too short", "short-id", true},
		{"exactly 30", strings.Repeat("a", 30), false},
		{"too long 129", strings.Repeat("a", 129), true},
		{"exactly 128", strings.Repeat("a", 128), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateUserID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if !tt.wantErr && got == "" {
				t.Error("valid ID returned empty")
			}
		})
	}
}

func TestValidateHashPrefix(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid 4 chars", "abcd", "abcd", false},
		{"valid 8 chars", "abcd1234", "abcd1234", false},
		{"uppercase normalized", "ABCD", "abcd", false},
		{"too short", "abc", "", true},
		{"too long", "abcdefghi", "", true},
		{"non-hex", "ghij", "", true},
		{"trims whitespace", " abcd ", "abcd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateHashPrefix(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateIncomingSegment(t *testing.T) {
	valid := model.IncomingSegment{
		Category:        "sponsor",
		DescriptionHash: "abcd",
		FirstCharacters: "Thi",
		LastCharacters:  "ore",
		Length:          42,
	}

	if errMsg := ValidateIncomingSegment(valid); errMsg != "" {
		t.Fatalf("valid segment rejected: %s", errMsg)
	}

	tests := []struct {
		name   string
		mutate func(*model.IncomingSegment)
	}{
		{"missing category", func(s *model.IncomingSegment) { s.Category = "" }},
		{"missing description hash", func(s *model.IncomingSegment) { s.DescriptionHash = "" }},
		{"length too short", func(s *model.IncomingSegment) { s.Length = 1 }},
		{"first characters empty", func(s *model.IncomingSegment) { s.FirstCharacters = "" }},
		{"first characters too long", func(s *model.IncomingSegment) { s.FirstCharacters = "abcdef" }},
		{"last characters empty", func(s *model.IncomingSegment) { s.LastCharacters = "" }},
		{"last characters too long", func(s *model.IncomingSegment) { s.LastCharacters = "abcdef" }},
		{"negative offset", func(s *model.IncomingSegment) { s.Offset = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := valid
			tt.mutate(&seg)
			if errMsg := ValidateIncomingSegment(seg); errMsg == "" {
				t.Error("expected error, got none")
			}
		})
	}
}

func TestValidateLockCategories(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		wantErr    bool
	}{
		{"single category", []string{"sponsor"}, false},
		{"multiple categories", []string{"sponsor", "intro"}, false},
		{"empty list", []string{}, true},
		{"nil list", nil, true},
		{"blank entry", []string{"sponsor", ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := ValidateLockCategories(tt.categories)
			if tt.wantErr && errMsg == "" {
				t.Error("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
		})
	}
}

func TestValidateUserAgent(t *testing.T) {
	if got := ValidateUserAgent("  DeArrow/1.0  "); got != "DeArrow/1.0" {
		t.Errorf("trim failed: got %q", got)
	}
	long := strings.Repeat("x", 200)
	if got := ValidateUserAgent(long); len(got) != MaxUserAgentLen {
		t.Errorf("truncation failed: got len %d, want %d", len(got), MaxUserAgentLen)
	}
}
