package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a markdown body into the HTML sent to providers.
// Raw HTML in the source is dropped.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}
