// Package markdown parses the constrained Markdown dialect used by assistant
// answers into a flat sequence of typed block nodes, and renders those nodes
// back to text or HTML.
package markdown

// Node is a block-level element. Blocks never nest.
type Node interface {
	node()
}

// Inline is an inline span inside a heading, paragraph or list item.
type Inline interface {
	inline()
}

// Heading is a level 1-3 heading.
type Heading struct {
	Level    int
	Children []Inline
}

// Paragraph is a single prose line.
type Paragraph struct {
	Children []Inline
}

// UnorderedList holds consecutive "- " items.
type UnorderedList struct {
	Items [][]Inline
}

// OrderedList holds consecutive "N. " items.
type OrderedList struct {
	Items [][]Inline
}

// CodeBlock is the verbatim content of a fenced block, trimmed.
type CodeBlock struct {
	Text string
}

func (Heading) node()       {}
func (Paragraph) node()     {}
func (UnorderedList) node() {}
func (OrderedList) node()   {}
func (CodeBlock) node()     {}

// PlainText is unstyled text, including any unmatched markers.
type PlainText struct {
	Text string
}

// Bold is a **strong** span.
type Bold struct {
	Text string
}

// Italic is an *emphasis* span.
type Italic struct {
	Text string
}

// InlineCode is a `code` span.
type InlineCode struct {
	Text string
}

// Link is a [label](url) span. Only http and https targets are recognised.
type Link struct {
	Label string
	URL   string
}

func (PlainText) inline()  {}
func (Bold) inline()       {}
func (Italic) inline()     {}
func (InlineCode) inline() {}
func (Link) inline()       {}

// Interface compliance checks.
var (
	_ Node = Heading{}
	_ Node = Paragraph{}
	_ Node = UnorderedList{}
	_ Node = OrderedList{}
	_ Node = CodeBlock{}

	_ Inline = PlainText{}
	_ Inline = Bold{}
	_ Inline = Italic{}
	_ Inline = InlineCode{}
	_ Inline = Link{}
)
