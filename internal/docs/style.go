package docs

import (
	"fmt"
	"strings"
)

// Markdown writing helpers. Every block helper leaves the section ending in
// a blank line so blocks can be emitted back to back.

// Heading writes a markdown heading at the given level.
func (s *Section) Heading(level int, text string) {
	s.Write(strings.Repeat("#", level) + " " + text + "\n\n")
}

// Paragraph writes a block of prose.
func (s *Section) Paragraph(text string) {
	if text == "" {
		return
	}
	s.Write(text + "\n\n")
}

// Label writes a bolded inline label such as "**Request syntax**".
func (s *Section) Label(text string) {
	s.Write("**" + text + "**\n\n")
}

// CodeBlock writes a fenced code block.
func (s *Section) CodeBlock(lang, code string) {
	s.Write("```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```\n\n")
}

// Bullet writes one list item at the given nesting depth.
func (s *Section) Bullet(depth int, text string) {
	s.Write(strings.Repeat("  ", depth) + "- " + text + "\n")
}

// EndList terminates a bullet list so following prose starts a new block.
func (s *Section) EndList() {
	s.Write("\n")
}

func bold(text string) string { return "**" + text + "**" }

func italic(text string) string { return "*" + text + "*" }

func code(text string) string { return "`" + text + "`" }

// resourceLink renders a cross-page link to a resource type's page.
func resourceLink(serviceName, resourceType string) string {
	return fmt.Sprintf("[%s.%s](%s.md)", serviceName, resourceType, resourceType)
}
