package website

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f.reply, f.err
}

func TestGenerateWritesSite(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{
		LLM: &fakeLLM{reply: `{"title":"The Smith Family","tagline":"Together since 1998","about":"We love hiking.","sections":[{"heading":"Our Story","body":"It began in Cork."}]}`},
		OutputDir: dir,
	}

	site, err := g.Generate(context.Background(), "fam1", "Smith", "make it warm", "modern")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if site.Title != "The Smith Family" {
		t.Fatalf("title = %q", site.Title)
	}
	if site.Theme != "modern" || site.Status != "draft" {
		t.Fatalf("theme/status = %q/%q", site.Theme, site.Status)
	}
	if !strings.Contains(site.HTML, "Together since 1998") || !strings.Contains(site.HTML, "Our Story") {
		t.Fatalf("rendered html missing content:\n%s", site.HTML)
	}

	html, err := os.ReadFile(filepath.Join(dir, "fam1", "index.html"))
	if err != nil {
		t.Fatalf("index.html not written: %v", err)
	}
	if string(html) != site.HTML {
		t.Fatal("index.html differs from site HTML")
	}
	css, err := os.ReadFile(filepath.Join(dir, "fam1", "style.css"))
	if err != nil {
		t.Fatalf("style.css not written: %v", err)
	}
	if string(css) != themes["modern"] {
		t.Fatal("style.css is not the chosen theme")
	}
}

func TestGenerateUnknownThemeFallsBack(t *testing.T) {
	g := &Generator{
		LLM:       &fakeLLM{reply: `{"title":"The Lee Family"}`},
		OutputDir: t.TempDir(),
	}
	site, err := g.Generate(context.Background(), "fam2", "Lee", "", "vaporwave")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if site.Theme != "classic" {
		t.Fatalf("theme = %q, want classic", site.Theme)
	}
	if site.CSS != themes["classic"] {
		t.Fatal("css is not the classic theme")
	}
}

func TestGenerateLLMFailure(t *testing.T) {
	g := &Generator{
		LLM:       &fakeLLM{err: errors.New("model not loaded")},
		OutputDir: t.TempDir(),
	}
	if _, err := g.Generate(context.Background(), "fam3", "Kim", "", "classic"); err == nil {
		t.Fatal("expected error when the model fails")
	}
}

func TestParseContentToleratesFences(t *testing.T) {
	raw := "Sure! Here is the site:\n```json\n{\"title\":\"The Ortiz Family\",\"about\":\"Hola\"}\n```"
	content := parseContent(raw, "Ortiz")
	if content.Title != "The Ortiz Family" || content.About != "Hola" {
		t.Fatalf("parsed = %+v", content)
	}
}

func TestParseContentDegradesOnGarbage(t *testing.T) {
	content := parseContent("I cannot produce JSON today.", "Nguyen")
	if content.Title != "The Nguyen Family" {
		t.Fatalf("fallback title = %q", content.Title)
	}
	if content.About != "I cannot produce JSON today." {
		t.Fatalf("fallback about = %q", content.About)
	}
}
