package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reel/internal/graph"
)

var titleCaser = cases.Title(language.English)

// kindDisplayName renders a node kind for table output, preferring the
// canvas title and falling back to title-casing the raw tag.
func kindDisplayName(kind string) string {
	if parsed, ok := graph.ParseKind(kind); ok {
		return parsed.DefaultTitle()
	}
	return titleCaser.String(strings.ReplaceAll(kind, "_", " "))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
