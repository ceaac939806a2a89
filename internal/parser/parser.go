// Package parser extracts frontmatter, title, section headings, and tags from
// cheatsheet Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	// Sections are the level-3 headings in document order. Each one opens a
	// card in the cheatsheet viewer.
	Sections []string
	Tags     []string
}

// Parse extracts frontmatter, body, title, sections, and tags from raw Markdown bytes.
// Headings and tags inside fenced code blocks are ignored.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	prose := proseLines(body)

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, prose),
		Sections:    extractSections(prose),
		Tags:        extractTags(prose, fm),
	}, nil
}

// TitleOr returns the parsed title, or fallback when the document has none.
func (r *Result) TitleOr(fallback string) string {
	if r.Title != "" {
		return r.Title
	}
	return fallback
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the whole file as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// proseLines returns the body lines that are outside fenced code blocks.
func proseLines(body string) []string {
	var out []string
	fence := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		out = append(out, line)
	}
	return out
}

func extractSections(lines []string) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "### ") {
			if heading := strings.TrimSpace(strings.TrimRight(trimmed[4:], "#")); heading != "" {
				out = append(out, heading)
			}
		}
	}
	return out
}

// extractTags collects #tags from prose and from the frontmatter "tags" field.
func extractTags(lines []string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(tag string) {
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if raw, ok := fm["tags"]; ok {
		if items, ok := raw.([]interface{}); ok {
			for _, item := range items {
				if s, ok := item.(string); ok {
					add(strings.TrimSpace(s))
				}
			}
		}
	}

	for _, line := range lines {
		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}

	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, lines []string) string {
	if t, ok := fm["title"]; ok {
		if s, ok := t.(string); ok && s != "" {
			return s
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
