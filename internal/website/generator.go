package website

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ContentGenerator produces the site copy; in production it is the Ollama
// client, in tests a canned fake.
type ContentGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

const systemPrompt = `You write warm, concise copy for a family homepage.
Respond with only a JSON object: {"title": ..., "tagline": ..., "about": ..., "sections": [{"heading": ..., "body": ...}]}`

type siteContent struct {
	Title    string `json:"title"`
	Tagline  string `json:"tagline"`
	About    string `json:"about"`
	Sections []struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
	} `json:"sections"`
}

// Generator turns a prompt into a static one-page site: LLM copy poured into
// a themed HTML/CSS template, persisted to Postgres and written to disk.
type Generator struct {
	LLM       ContentGenerator
	OutputDir string
}

func (g *Generator) Generate(ctx context.Context, familyID, familyName, prompt, theme string) (*Site, error) {
	raw, err := g.LLM.Generate(ctx, systemPrompt,
		fmt.Sprintf("Family name: %s. %s", familyName, prompt))
	if err != nil {
		return nil, fmt.Errorf("content generation: %w", err)
	}

	content := parseContent(raw, familyName)
	css, ok := themes[theme]
	if !ok {
		theme = "classic"
		css = themes[theme]
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, content); err != nil {
		return nil, fmt.Errorf("render site: %w", err)
	}

	site := &Site{
		FamilyID:    familyID,
		Title:       content.Title,
		Theme:       theme,
		HTML:        buf.String(),
		CSS:         css,
		Status:      "draft",
		GeneratedAt: time.Now().UTC(),
	}
	if err := g.writeFiles(familyID, site); err != nil {
		return nil, err
	}
	return site, nil
}

// parseContent tolerates models that wrap JSON in prose or code fences; on
// any parse failure it degrades to a minimal site rather than failing the
// request.
func parseContent(raw, familyName string) siteContent {
	var content siteContent
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &content); err == nil && content.Title != "" {
			return content
		}
	}
	content.Title = "The " + familyName + " Family"
	content.About = strings.TrimSpace(raw)
	return content
}

func (g *Generator) writeFiles(familyID string, site *Site) error {
	dir := filepath.Join(g.OutputDir, familyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(site.HTML), 0o644); err != nil {
		return fmt.Errorf("write index.html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(site.CSS), 0o644); err != nil {
		return fmt.Errorf("write style.css: %w", err)
	}
	return nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .Tagline}}<p class="tagline">{{.Tagline}}</p>{{end}}
</header>
<main>
{{if .About}}<section class="about"><p>{{.About}}</p></section>{{end}}
{{range .Sections}}
<section>
<h2>{{.Heading}}</h2>
<p>{{.Body}}</p>
</section>
{{end}}
</main>
<footer><p>Made with KinHub</p></footer>
</body>
</html>
`))

var themes = map[string]string{
	"classic": `body{font-family:Georgia,serif;max-width:720px;margin:0 auto;padding:2rem;color:#2b2b2b;background:#faf7f2}
header{text-align:center;border-bottom:2px solid #c9b896;padding-bottom:1rem}
.tagline{font-style:italic;color:#7a6f5d}
section{margin:2rem 0}
footer{text-align:center;color:#a99;font-size:.85rem;margin-top:3rem}`,
	"modern": `body{font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:860px;margin:0 auto;padding:2rem;color:#1a1a2e;background:#fff}
header{padding:3rem 0}
h1{font-size:2.6rem;letter-spacing:-.02em}
.tagline{color:#5c5c7a;font-size:1.1rem}
section{margin:2.5rem 0;padding:1.5rem;border-radius:12px;background:#f4f4fb}
footer{color:#bbb;font-size:.8rem;margin-top:4rem}`,
	"dark": `body{font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:800px;margin:0 auto;padding:2rem;color:#e8e8e8;background:#14141c}
h1,h2{color:#fff}
.tagline{color:#8f8fb0}
section{margin:2rem 0;border-left:3px solid #44446a;padding-left:1.25rem}
footer{color:#555;font-size:.8rem;margin-top:3rem}`,
}
