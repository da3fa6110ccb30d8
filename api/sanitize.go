package api

import "github.com/microcosm-cc/bluemonday"

// notePolicy is the allow-list applied to note content at the render
// boundary. Stored content stays as authored; only what leaves the API for
// display is sanitized.
var notePolicy = bluemonday.UGCPolicy()

func sanitizeNoteContent(content string) string {
	return notePolicy.Sanitize(content)
}
