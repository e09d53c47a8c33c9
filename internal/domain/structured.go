package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// String is a text result, e.g. the output of a server help function.
// Text cannot be plotted.
type String struct {
	Unimplemented
	Value string
}

var _ Data = (*String)(nil)

func (s *String) Widget(ctx context.Context) (*Widget, error) {
	w := &Widget{Kind: WidgetText, Title: "string"}
	w.add("value", s.Value)
	return w, nil
}

func (s *String) String() string { return s.Value }

// TreeNode is one node of a structured result.
type TreeNode struct {
	Name       string
	Attributes map[string]any
	Children   []*TreeNode
}

// Child returns the first direct child with the given name.
func (n *TreeNode) Child(name string) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// StructuredData is a tree of named nodes carrying attributes.
type StructuredData struct {
	Unimplemented
	Root *TreeNode
}

var _ Data = (*StructuredData)(nil)

// Find walks a slash separated path of child names below the root.
// An empty path returns the root.
func (d *StructuredData) Find(path string) (*TreeNode, bool) {
	n := d.Root
	if n == nil {
		return nil, false
	}
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		if n = n.Child(name); n == nil {
			return nil, false
		}
	}
	return n, true
}

func (d *StructuredData) Widget(ctx context.Context) (*Widget, error) {
	if d.Root == nil {
		return &Widget{Kind: WidgetTree, Title: "(empty)"}, nil
	}
	return treeWidget(d.Root), nil
}

func treeWidget(n *TreeNode) *Widget {
	w := &Widget{Kind: WidgetTree, Title: n.Name}
	names := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		w.add(k, n.Attributes[k])
	}
	for _, c := range n.Children {
		w.Children = append(w.Children, treeWidget(c))
	}
	return w
}

func (d *StructuredData) String() string {
	if d.Root == nil {
		return "(empty tree)"
	}
	var b strings.Builder
	writeTree(&b, d.Root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeTree(b *strings.Builder, n *TreeNode, depth int) {
	fmt.Fprintf(b, "%s%s (%d attributes)\n", strings.Repeat("  ", depth), n.Name, len(n.Attributes))
	for _, c := range n.Children {
		writeTree(b, c, depth+1)
	}
}
