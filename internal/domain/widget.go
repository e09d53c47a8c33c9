package domain

import (
	"fmt"
	"strings"
)

// WidgetKind names how a widget is meant to be displayed.
type WidgetKind string

const (
	WidgetPanel WidgetKind = "panel"
	WidgetText  WidgetKind = "text"
	WidgetTree  WidgetKind = "tree"
)

// Field is a labelled value shown by a widget.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Widget is a display-agnostic description of an interactive view of data.
// Front ends (the CLI, MCP clients) decide how to draw it.
type Widget struct {
	Kind     WidgetKind `json:"kind"`
	Title    string     `json:"title"`
	Fields   []Field    `json:"fields,omitempty"`
	Children []*Widget  `json:"children,omitempty"`
}

// Field returns the value of the named field and whether it exists.
func (w *Widget) Field(name string) (string, bool) {
	for _, f := range w.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (w *Widget) add(name string, value any) {
	w.Fields = append(w.Fields, Field{Name: name, Value: fmt.Sprint(value)})
}

// Text renders the widget as indented plain text.
func (w *Widget) Text() string {
	var b strings.Builder
	w.writeText(&b, 0)
	return b.String()
}

func (w *Widget) writeText(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s\n", indent, w.Title)
	for _, f := range w.Fields {
		fmt.Fprintf(b, "%s  %s: %s\n", indent, f.Name, f.Value)
	}
	for _, c := range w.Children {
		c.writeText(b, depth+1)
	}
}
