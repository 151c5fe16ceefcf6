// Package syntax holds the lossless syntax tree: every byte of the source
// belongs to exactly one leaf token, so concatenating the leaves in order
// reproduces the source.
package syntax

import (
	"fmt"
	"iter"
	"strings"
)

// =========================
// Spans
// =========================

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) IsEmpty() bool { return s.Start == s.End }

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// ContainsSpan reports whether other lies entirely inside s.
func (s Span) ContainsSpan(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two ranges share any position, or one of
// them touches the other's start or end from the inside.
func (s Span) Overlaps(other Span) bool {
	return s.ContainsSpan(other) ||
		other.ContainsSpan(s) ||
		s.Contains(other.Start) ||
		s.Contains(other.End) ||
		other.Contains(s.Start) ||
		other.Contains(s.End)
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// =========================
// Elements
// =========================

// Element is either a *Node or a *Token.
type Element interface {
	Kind() Kind
	Span() Span
	Text(source string) string
	element()
}

// Token is a leaf of the tree.
type Token struct {
	kind Kind
	span Span
}

func (t *Token) Kind() Kind { return t.kind }

func (t *Token) Span() Span { return t.span }

func (t *Token) Text(source string) string {
	return source[t.span.Start:t.span.End]
}

func (*Token) element() {}

// Node groups tokens and nodes under a grammatical category.
type Node struct {
	kind     Kind
	span     Span
	children []Element
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) Span() Span { return n.span }

func (n *Node) Text(source string) string {
	return source[n.span.Start:n.span.End]
}

func (*Node) element() {}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []Element { return n.children }

// ChildNodes yields the direct children that are nodes.
func (n *Node) ChildNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, c := range n.children {
			if cn, ok := c.(*Node); ok {
				if !yield(cn) {
					return
				}
			}
		}
	}
}

// FirstToken returns the first direct child token of the given kind.
func (n *Node) FirstToken(kind Kind) *Token {
	for _, c := range n.children {
		if t, ok := c.(*Token); ok && t.kind == kind {
			return t
		}
	}
	return nil
}

// FindNode returns the first direct child node of the given kind.
func (n *Node) FindNode(kind Kind) *Node {
	for _, c := range n.children {
		if cn, ok := c.(*Node); ok && cn.kind == kind {
			return cn
		}
	}
	return nil
}

// Has reports whether any direct child has the given kind.
func (n *Node) Has(kind Kind) bool {
	for _, c := range n.children {
		if c.Kind() == kind {
			return true
		}
	}
	return false
}

// Descendants walks every element below n depth-first, nodes before their
// children, children in source order. Each range over the sequence starts
// a fresh walk.
func (n *Node) Descendants() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		stack := make([]Element, 0, len(n.children))
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(e) {
				return
			}
			if cn, ok := e.(*Node); ok {
				for i := len(cn.children) - 1; i >= 0; i-- {
					stack = append(stack, cn.children[i])
				}
			}
		}
	}
}

// Tokens yields the leaf tokens below n in source order.
func (n *Node) Tokens() iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		for e := range n.Descendants() {
			if t, ok := e.(*Token); ok {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// =========================
// Tree
// =========================

// Tree is a finished syntax tree together with the source it spans.
type Tree struct {
	root   *Node
	source string
}

func (t *Tree) Root() *Node { return t.root }

func (t *Tree) Source() string { return t.source }

// Dump renders the tree one element per line, indented by depth, for
// tests and debugging.
func (t *Tree) Dump() string {
	var b strings.Builder
	var walk func(e Element, depth int)
	walk = func(e Element, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&b, "%s@%s", e.Kind(), e.Span())
		if tok, ok := e.(*Token); ok {
			fmt.Fprintf(&b, " %q", tok.Text(t.source))
		}
		b.WriteByte('\n')
		if n, ok := e.(*Node); ok {
			for _, c := range n.children {
				walk(c, depth+1)
			}
		}
	}
	walk(t.root, 0)
	return b.String()
}
