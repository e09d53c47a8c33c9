// Package codec maps content types to serializers used on the wire and in
// the result cache.
package codec

import (
	"fmt"
	"strings"
)

// Codec defines a simple interface for marshaling typed messages.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Short names accepted in configuration.
var aliases = map[string]string{
	"json":  "application/json",
	"cbor":  "application/cbor",
	"proto": "application/x-protobuf",
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with JSON, CBOR and Protobuf.
func NewRegistry() (*Registry, error) {
	r := &Registry{byType: make(map[string]Codec)}
	r.Register(JSON())
	r.Register(Proto())
	c, err := CBOR()
	if err != nil {
		return nil, fmt.Errorf("cbor codec: %w", err)
	}
	r.Register(c)
	return r, nil
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type or short name, or nil. Media type
// parameters such as "; charset=utf-8" are ignored.
func (r *Registry) Get(contentType string) Codec {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if full, ok := aliases[ct]; ok {
		ct = full
	}
	return r.byType[ct]
}

// Resolve expands a short codec name to its content type.
func Resolve(name string) (string, error) {
	if full, ok := aliases[strings.ToLower(name)]; ok {
		return full, nil
	}
	return "", fmt.Errorf("unknown codec: %q (must be json, cbor or proto)", name)
}
