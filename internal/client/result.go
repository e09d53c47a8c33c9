package client

import (
	"errors"
	"fmt"

	"github.com/tobyjamez/UDA/internal/domain"
)

var ErrUnknownKind = errors.New("unknown result kind")

// Result kinds on the wire.
const (
	KindSignal = "signal"
	KindString = "string"
	KindStruct = "struct"
)

// Result is a data server response as it travels on the wire.
type Result struct {
	Signal       string            `json:"signal"`
	Source       string            `json:"source"`
	Kind         string            `json:"kind"`
	ErrorCode    int               `json:"error_code,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Label        string            `json:"label,omitempty"`
	Units        string            `json:"units,omitempty"`
	Description  string            `json:"description,omitempty"`
	Shape        []int             `json:"shape,omitempty"`
	Order        *int              `json:"order,omitempty"`
	Data         []float64         `json:"data,omitempty"`
	Errors       []float64         `json:"errors,omitempty"`
	Dims         []WireDim         `json:"dims,omitempty"`
	Value        string            `json:"value,omitempty"`
	Tree         *WireNode         `json:"tree,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
}

type WireDim struct {
	Label string    `json:"label,omitempty"`
	Units string    `json:"units,omitempty"`
	Data  []float64 `json:"data"`
}

type WireNode struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Children   []*WireNode    `json:"children,omitempty"`
}

// ServerError is an error reported by the data server inside a result.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Err returns the server error carried by r, if any.
func (r *Result) Err() error {
	if r.ErrorCode == 0 {
		return nil
	}
	return &ServerError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// ToData converts r into the matching domain type.
func (r *Result) ToData(renderer domain.Renderer) (domain.Data, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}

	switch r.Kind {
	case KindSignal:
		return r.toSignal(renderer), nil
	case KindString:
		return &domain.String{Value: r.Value}, nil
	case KindStruct:
		return &domain.StructuredData{Root: toNode(r.Tree)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
}

func (r *Result) toSignal(renderer domain.Renderer) *domain.Signal {
	s := &domain.Signal{
		Label:       r.Label,
		Units:       r.Units,
		Description: r.Description,
		Shape:       r.Shape,
		Order:       -1,
		Data:        r.Data,
		Errors:      r.Errors,
		Meta:        r.Meta,
	}
	if r.Order != nil {
		s.Order = *r.Order
	}
	// A bare vector with no shape is rank 1; a single value stays a scalar.
	if s.Shape == nil && len(r.Data) > 1 {
		s.Shape = []int{len(r.Data)}
	}
	for i, d := range r.Dims {
		s.Dims = append(s.Dims, domain.Dim{Index: i, Label: d.Label, Units: d.Units, Data: d.Data})
	}
	s.SetRenderer(renderer)
	return s
}

func toNode(n *WireNode) *domain.TreeNode {
	if n == nil {
		return nil
	}
	out := &domain.TreeNode{Name: n.Name, Attributes: n.Attributes}
	for _, c := range n.Children {
		out.Children = append(out.Children, toNode(c))
	}
	return out
}
