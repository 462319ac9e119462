package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"academy/internal/domain/document"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type documentSummaryView struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Color   string `json:"color"`
}

type documentView struct {
	documentSummaryView
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

func toDocumentSummary(d document.Document) documentSummaryView {
	return documentSummaryView{ID: d.ID, Title: d.Title, Summary: d.Summary, Color: d.Color}
}

// handleListDocuments handles GET /api/documents?q=
func handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := document.Search(strings.TrimSpace(r.URL.Query().Get("q")))
	views := make([]documentSummaryView, 0, len(docs))
	for _, d := range docs {
		views = append(views, toDocumentSummary(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": views})
}

// handleGetDocument handles GET /api/documents/{id}. The markdown is also returned rendered.
func handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		badRequest(w, "document id must be a number")
		return
	}
	d, err := document.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(d.Markdown), &buf); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentView{
		documentSummaryView: toDocumentSummary(d),
		Markdown:            d.Markdown,
		HTML:                buf.String(),
	})
}
