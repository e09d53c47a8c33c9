package codec

import (
	"fmt"
	"math"
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type protoCodec struct {
	mo proto.MarshalOptions
	uo proto.UnmarshalOptions
	// enc and dec move plain values to and from the map form of a Struct.
	// CBOR keeps NaN and infinities, which a JSON hop would reject.
	enc cbor.EncMode
	dec cbor.DecMode
}

// Proto returns a Protocol Buffers codec with deterministic marshaling.
// Values that are not proto.Message travel as a google.protobuf.Struct built
// from their field map (json tags name the keys).
// Content-Type: application/x-protobuf
func Proto() Codec {
	// zero options always build a valid mode
	enc, _ := cbor.EncOptions{}.EncMode()
	dec, _ := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	return protoCodec{
		mo:  proto.MarshalOptions{Deterministic: true},
		uo:  proto.UnmarshalOptions{},
		enc: enc,
		dec: dec,
	}
}

func (p protoCodec) ContentType() string { return "application/x-protobuf" }

func (p protoCodec) Marshal(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		return p.mo.Marshal(msg)
	}

	raw, err := p.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protobuf: %w", err)
	}
	var m map[string]any
	if err := p.dec.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protobuf: value is not an object: %T", v)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("protobuf: %w", err)
	}
	return p.mo.Marshal(s)
}

func (p protoCodec) Unmarshal(data []byte, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return p.uo.Unmarshal(data, msg)
	}

	var s structpb.Struct
	if err := p.uo.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := p.enc.Marshal(integral(s.AsMap()))
	if err != nil {
		return fmt.Errorf("protobuf: %w", err)
	}
	return p.dec.Unmarshal(raw, v)
}

// integral turns whole float64 numbers back into int64 so they decode into
// integer fields; Struct stores every number as a double.
func integral(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = integral(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = integral(e)
		}
		return t
	default:
		return v
	}
}
