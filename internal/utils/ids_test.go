package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGeneratePasscode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := GeneratePasscode()
		if !pattern.MatchString(code) {
			t.Fatalf("passcode %q is not 6 digits", code)
		}
		seen[code] = true
	}
	// 100 draws from a million values colliding down to a handful would
	// mean a broken generator
	if len(seen) < 90 {
		t.Fatalf("only %d distinct passcodes in 100 draws", len(seen))
	}
}

func TestUniqueFilename(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{8}\.jpeg$`)
	name := UniqueFilename("IMG 1234.JPEG")
	if !pattern.MatchString(name) {
		t.Fatalf("unexpected filename %q", name)
	}
	if UniqueFilename("noext") == "" {
		t.Fatal("empty filename for extensionless input")
	}
	if strings.Contains(UniqueFilename("noext"), ".") {
		t.Fatal("invented an extension for extensionless input")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"The Smiths":       "the-smiths",
		"  Summer BBQ '24": "summer-bbq-24",
		"---":              "untitled",
		"":                 "untitled",
		"Ünïcode Fest":     "ncode-fest",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaType(t *testing.T) {
	if MediaType("video/mp4") != "video" {
		t.Fatal("mp4 should be video")
	}
	if MediaType("image/png") != "image" {
		t.Fatal("png should be image")
	}
}
