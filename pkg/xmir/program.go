package xmir

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Program is a parsed XMIR document.
// It is read-only once parsed and safe for concurrent use.
type Program struct {
	root     *Node
	metas    []Meta
	comments []Comment
	objects  []*Object
}

// Meta is a "+head tail" directive of the program.
type Meta struct {
	Line  int
	Head  string
	Tail  string
	Parts []string
}

// Comment is a comment block of the program.
// Text excludes the leading '#' and may span several lines.
type Comment struct {
	Line int
	Text string
}

// Object is a declared object, possibly nested.
type Object struct {
	Name     string
	Base     string
	Line     int
	Pos      int
	Children []*Object
}

// Parse decodes an XMIR document.
func Parse(r io.Reader) (*Program, error) {
	root, err := decode(r)
	if err != nil {
		return nil, err
	}
	if root.Name != "program" {
		return nil, fmt.Errorf("xmir root element is <%s>, expected <program>", root.Name)
	}

	p := &Program{root: root}
	if err := p.index(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseString decodes an XMIR document held in a string.
func ParseString(s string) (*Program, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile decodes an XMIR file.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the caller on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Program) index() error {
	for _, m := range p.root.Child("metas").ChildrenNamed("meta") {
		line, err := lineOf(m)
		if err != nil {
			return err
		}
		if m.Child("head") == nil {
			return fmt.Errorf("<meta> at line %d has no <head>", line)
		}
		meta := Meta{
			Line: line,
			Head: strings.TrimSpace(m.ChildText("head")),
			Tail: strings.TrimSpace(m.ChildText("tail")),
		}
		for _, part := range m.ChildrenNamed("part") {
			meta.Parts = append(meta.Parts, strings.TrimSpace(part.Text))
		}
		p.metas = append(p.metas, meta)
	}

	for _, c := range p.root.Child("comments").ChildrenNamed("comment") {
		line, err := lineOf(c)
		if err != nil {
			return err
		}
		p.comments = append(p.comments, Comment{Line: line, Text: c.Text})
	}

	objects, err := buildObjects(p.root.Child("objects"))
	if err != nil {
		return err
	}
	p.objects = objects
	return nil
}

func buildObjects(parent *Node) ([]*Object, error) {
	var out []*Object
	for _, n := range parent.ChildrenNamed("o") {
		line, err := lineOf(n)
		if err != nil {
			return nil, err
		}
		pos, err := intAttr(n, "pos")
		if err != nil {
			return nil, err
		}
		children, err := buildObjects(n)
		if err != nil {
			return nil, err
		}
		out = append(out, &Object{
			Name:     n.Attr("name"),
			Base:     n.Attr("base"),
			Line:     line,
			Pos:      pos,
			Children: children,
		})
	}
	return out, nil
}

func lineOf(n *Node) (int, error) {
	line, err := intAttr(n, "line")
	if err != nil {
		return 0, err
	}
	if line < 0 {
		return 0, fmt.Errorf("<%s> has negative line %d", n.Name, line)
	}
	return line, nil
}

func intAttr(n *Node, name string) (int, error) {
	raw := n.Attr(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("<%s> has invalid %s=%q: %w", n.Name, name, raw, err)
	}
	return v, nil
}

// Root returns the raw element tree.
func (p *Program) Root() *Node { return p.root }

// Name returns the program name, usually the source file stem.
func (p *Program) Name() string { return p.root.Attr("name") }

// Metas returns all meta directives in source order.
func (p *Program) Metas() []Meta { return p.metas }

// Comments returns all comments in source order.
func (p *Program) Comments() []Comment { return p.comments }

// Objects returns the top-level objects in declaration order.
func (p *Program) Objects() []*Object { return p.objects }

// HasMeta reports whether the program declares a meta with the given head.
func (p *Program) HasMeta(head string) bool {
	for _, m := range p.metas {
		if m.Head == head {
			return true
		}
	}
	return false
}

// IsTests reports whether the program is a test suite (declares +tests).
func (p *Program) IsTests() bool {
	return p.HasMeta("tests")
}

// Walk visits every object depth-first in declaration order.
// Returning false from fn skips the object's children.
func (p *Program) Walk(fn func(o *Object, depth int) bool) {
	var walk func(objs []*Object, depth int)
	walk = func(objs []*Object, depth int) {
		for _, o := range objs {
			if fn(o, depth) {
				walk(o.Children, depth+1)
			}
		}
	}
	walk(p.objects, 0)
}
