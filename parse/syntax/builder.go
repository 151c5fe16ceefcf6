package syntax

import "fmt"

type frame struct {
	kind     Kind
	start    int
	children []Element
}

// Builder assembles a Tree bottom-up during a single parse. Misuse (tokens
// outside any node, unbalanced start/finish, text not matching the source)
// is a bug in the caller and panics.
type Builder struct {
	source string
	stack  []frame
	pos    int
	root   *Node
}

func NewBuilder(source string) *Builder {
	return &Builder{source: source}
}

// Pos is the offset of the next unconsumed byte.
func (b *Builder) Pos() int { return b.pos }

func (b *Builder) StartNode(kind Kind) {
	if b.root != nil {
		panic("syntax: StartNode after the root node was finished")
	}
	b.stack = append(b.stack, frame{kind: kind, start: b.pos})
}

// Token appends a leaf spanning the next len(text) bytes to the innermost
// open node.
func (b *Builder) Token(kind Kind, text string) {
	if len(b.stack) == 0 {
		panic(fmt.Sprintf("syntax: token %s outside of any node", kind))
	}
	end := b.pos + len(text)
	if end > len(b.source) || b.source[b.pos:end] != text {
		panic(fmt.Sprintf("syntax: token %s %q does not match source at %d", kind, text, b.pos))
	}
	top := &b.stack[len(b.stack)-1]
	top.children = append(top.children, &Token{kind: kind, span: Span{Start: b.pos, End: end}})
	b.pos = end
}

func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		panic("syntax: FinishNode without StartNode")
	}
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	node := &Node{kind: f.kind, span: Span{Start: f.start, End: b.pos}, children: f.children}
	if len(b.stack) == 0 {
		b.root = node
		return
	}
	parent := &b.stack[len(b.stack)-1]
	parent.children = append(parent.children, node)
}

// Finish returns the completed tree. Every node must be closed and the root
// must cover the whole source.
func (b *Builder) Finish() *Tree {
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("syntax: Finish with %d unclosed nodes", len(b.stack)))
	}
	if b.root == nil {
		panic("syntax: Finish without a root node")
	}
	if b.pos != len(b.source) {
		panic(fmt.Sprintf("syntax: Finish at %d of %d source bytes", b.pos, len(b.source)))
	}
	return &Tree{root: b.root, source: b.source}
}
