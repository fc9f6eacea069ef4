// Package render turns user-written markdown into sanitised HTML.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

func Markdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// Fields renders every non-empty value, keyed like the input. A field that
// fails to render is left out.
func Fields(fields map[string]*string) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		if value == nil || *value == "" {
			continue
		}
		rendered, err := Markdown(*value)
		if err != nil {
			continue
		}
		out[key] = rendered
	}
	return out
}
