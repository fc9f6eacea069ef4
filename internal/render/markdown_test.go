package render

import (
	"strings"
	"testing"
)

func TestMarkdownRendersAndSanitises(t *testing.T) {
	out, err := Markdown("**shipped** the timer\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<strong>shipped</strong>") {
		t.Fatalf("expected bold markup, got %q", out)
	}
	if strings.Contains(out, "<script") {
		t.Fatalf("script survived sanitising: %q", out)
	}
}

func TestFieldsSkipsEmptyValues(t *testing.T) {
	wentWell := "- focus blocks"
	empty := ""
	out := Fields(map[string]*string{
		"wentWell":   &wentWell,
		"toImprove":  &empty,
		"challenges": nil,
	})
	if len(out) != 1 {
		t.Fatalf("expected one rendered field, got %v", out)
	}
	if !strings.Contains(out["wentWell"], "<li>focus blocks</li>") {
		t.Fatalf("expected list item, got %q", out["wentWell"])
	}
}
