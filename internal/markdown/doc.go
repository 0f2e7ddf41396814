// Package markdown reads and writes Markdown documents that carry a YAML
// frontmatter header, and renders Markdown bodies into HTML with goldmark.
package markdown
