package markup

import (
	"strings"
	"testing"
)

func TestRenderStripsScripts(t *testing.T) {
	out := Render("**hi** <script>alert(1)</script>")
	if !strings.Contains(out, "<strong>hi</strong>") {
		t.Fatalf("markdown not rendered: %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script survived sanitising: %q", out)
	}
}

func TestExcerptCountsRunes(t *testing.T) {
	s := strings.Repeat("я", 40)
	if got := Excerpt(s, 30); got != strings.Repeat("я", 30) {
		t.Fatalf("excerpt = %q", got)
	}
	if got := Excerpt("short", 30); got != "short" {
		t.Fatalf("excerpt = %q", got)
	}
}
