package textbook

import (
	"strings"
	"testing"
)

func TestInspectPrefersOGTags(t *testing.T) {
	html := `
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="Linear Algebra Done Right">
    <meta property="og:description" content="An undergraduate text">
    <meta property="og:image" content="/covers/la.png">
  </head>
</html>`

	meta, err := Inspect(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if meta.Title != "Linear Algebra Done Right" {
		t.Fatalf("Title = %q", meta.Title)
	}
	if meta.Description != "An undergraduate text" {
		t.Fatalf("Description = %q", meta.Description)
	}
	if meta.CoverURL != "/covers/la.png" {
		t.Fatalf("CoverURL = %q", meta.CoverURL)
	}
}

func TestInspectFallsBackToTitleAndHeading(t *testing.T) {
	html := `<html><head><title>  Calculus I  </title></head><body><h1>ignored</h1></body></html>`

	meta, err := Inspect(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if meta.Title != "Calculus I" {
		t.Fatalf("Title = %q", meta.Title)
	}
	if meta.Description != "" || meta.CoverURL != "" {
		t.Fatalf("expected empty description/cover, got %+v", meta)
	}
}

func TestInspectHeadingFallback(t *testing.T) {
	html := `<html><body><h1>Organic Chemistry</h1></body></html>`

	meta, err := Inspect(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if meta.Title != "Organic Chemistry" {
		t.Fatalf("Title = %q", meta.Title)
	}
}
