package lex

import (
	"sort"
	"strings"
)

// Document is the per-frame record built for each active
// Document/DocumentChunk frame with non-empty content.
type Document struct {
	FrameID      uint64
	Tokens       []string
	Tags         []string
	Content      string
	ContentLower string
	URI          string
	Title        string
	Sections     []Section
}

// BuildDocument tokenizes content and chunks it into sections. tags are
// sorted so equal tag sets compare equal regardless of insertion order.
func BuildDocument(frameID uint64, uri, title, content string, tags []string) Document {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	lower := strings.ToLower(content)
	return Document{
		FrameID:      frameID,
		Tokens:       Tokenize(content),
		Tags:         sorted,
		Content:      content,
		ContentLower: lower,
		URI:          uri,
		Title:        title,
		Sections:     Chunk(lower),
	}
}
