// Package docs renders API reference documentation from service and
// resource models. Pages are built as a tree of named sections so
// documenters can revise earlier output (a method's return block is
// rewritten when the action yields a resource handle) before the tree is
// flattened into markdown.
package docs

import (
	"bytes"
	"strings"
)

// Section is one named node of a document tree. Text written to a section
// renders before its children; children render in the order they were
// added.
type Section struct {
	name     string
	body     strings.Builder
	children []*Section
}

// NewDocument returns an empty root section.
func NewDocument(name string) *Section {
	return &Section{name: name}
}

// Name returns the section's name.
func (s *Section) Name() string { return s.name }

// AddSection appends a child section and returns it.
func (s *Section) AddSection(name string) *Section {
	child := &Section{name: name}
	s.children = append(s.children, child)
	return child
}

// Section returns the named child, if present.
func (s *Section) Section(name string) (*Section, bool) {
	for _, child := range s.children {
		if child.name == name {
			return child, true
		}
	}
	return nil, false
}

// HasSection reports whether a named child exists.
func (s *Section) HasSection(name string) bool {
	_, ok := s.Section(name)
	return ok
}

// DeleteSection removes the named child. Re-adding the name afterwards
// appends a fresh section at the end.
func (s *Section) DeleteSection(name string) bool {
	for i, child := range s.children {
		if child.name == name {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return true
		}
	}
	return false
}

// SectionNames lists child names in render order.
func (s *Section) SectionNames() []string {
	names := make([]string, 0, len(s.children))
	for _, child := range s.children {
		names = append(names, child.name)
	}
	return names
}

// Write appends text to the section body.
func (s *Section) Write(text string) {
	s.body.WriteString(text)
}

// Render flattens the section and its children depth-first.
func (s *Section) Render() []byte {
	var buf bytes.Buffer
	s.renderTo(&buf)
	return buf.Bytes()
}

func (s *Section) renderTo(buf *bytes.Buffer) {
	buf.WriteString(s.body.String())
	for _, child := range s.children {
		child.renderTo(buf)
	}
}
