package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented is returned when a data type does not provide a capability.
var ErrNotImplemented = errors.New("capability not implemented")

// Plotter renders data as an image.
type Plotter interface {
	Plot(ctx context.Context, format Format) (*Figure, error)
}

// Widgeter describes data as an interactive widget tree.
type Widgeter interface {
	Widget(ctx context.Context) (*Widget, error)
}

// Data is the set of capabilities every result returned by the client has.
type Data interface {
	Plotter
	Widgeter
}

// Unimplemented can be embedded by data types that only support some of the
// Data capabilities. Its methods always return ErrNotImplemented.
type Unimplemented struct{}

func (Unimplemented) Plot(context.Context, Format) (*Figure, error) {
	return nil, fmt.Errorf("plot: %w", ErrNotImplemented)
}

func (Unimplemented) Widget(context.Context) (*Widget, error) {
	return nil, fmt.Errorf("widget: %w", ErrNotImplemented)
}

// CapabilityError reports which Data capabilities a value is missing.
type CapabilityError struct {
	Type    string
	Missing []string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s does not implement %s: %v", e.Type, strings.Join(e.Missing, ", "), ErrNotImplemented)
}

func (e *CapabilityError) Unwrap() error { return ErrNotImplemented }

// AsData checks at runtime that v provides both capabilities.
func AsData(v any) (Data, error) {
	if d, ok := v.(Data); ok {
		return d, nil
	}

	var missing []string
	if _, ok := v.(Plotter); !ok {
		missing = append(missing, "plot")
	}
	if _, ok := v.(Widgeter); !ok {
		missing = append(missing, "widget")
	}
	return nil, &CapabilityError{Type: fmt.Sprintf("%T", v), Missing: missing}
}
