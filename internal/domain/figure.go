package domain

import (
	"fmt"
	"strings"
)

// Format is an image output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s (must be png or svg)", s)
}

// MIMEType returns the content type of images in this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Figure is a rendered plot.
type Figure struct {
	Format   Format
	MIMEType string
	Data     []byte
}

func newFigure(format Format, data []byte) *Figure {
	return &Figure{Format: format, MIMEType: format.MIMEType(), Data: data}
}
