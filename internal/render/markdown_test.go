// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdownRender(t *testing.T) {
	md := NewMarkdown()

	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{
			name:     "heading",
			source:   "# Hello",
			contains: "<h1",
		},
		{
			name:     "emphasis",
			source:   "some *emphasis* here",
			contains: "<em>emphasis</em>",
		},
		{
			name:     "link",
			source:   "[site](https://example.com)",
			contains: `href="https://example.com"`,
		},
		{
			name:     "gfm table",
			source:   "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: "<table",
		},
		{
			name:     "gfm strikethrough",
			source:   "~~gone~~",
			contains: "<del>gone</del>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := md.Render(tt.source)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(html, tt.contains) {
				t.Errorf("Render(%q) = %q, want to contain %q", tt.source, html, tt.contains)
			}
		})
	}
}

func TestMarkdownSanitizesHTML(t *testing.T) {
	md := NewMarkdown()

	tests := []struct {
		name    string
		source  string
		forbids string
	}{
		{
			name:    "script tag",
			source:  `<script>alert("xss")</script>`,
			forbids: "<script",
		},
		{
			name:    "event handler",
			source:  `<img src="a.jpg" onerror="alert(1)">`,
			forbids: "onerror",
		},
		{
			name:    "javascript url",
			source:  `[click](javascript:alert(1))`,
			forbids: "javascript:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := md.Render(tt.source)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if strings.Contains(html, tt.forbids) {
				t.Errorf("Render(%q) = %q, must not contain %q", tt.source, html, tt.forbids)
			}
		})
	}
}

func TestMarkdownRenderEmpty(t *testing.T) {
	md := NewMarkdown()

	html, err := md.Render("")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.TrimSpace(html) != "" {
		t.Errorf("Render(empty) = %q, want empty output", html)
	}
}
