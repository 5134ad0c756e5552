package wire

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/termproto/pbedit/internal/schema"
)

// Decode reads a whole binary payload and assembles a MessageValue tree
// directed by root's declared fields. Fields present on the wire but
// absent from the schema are preserved as RawUnknown occurrences so a
// round trip through Encode reproduces them byte for byte, mirroring
// ProtoData's "unknown_field" placeholder in original_source/src/proto.rs.
//
// byteLimit, if non-nil, caps the number of bytes read from r; nil means
// unbounded. A limit exists because the original tool accepts a maximum
// payload size from the command line to guard against runaway files.
func Decode(r io.Reader, sch *schema.Schema, root *schema.MessageDescriptor, byteLimit *int64) (*MessageValue, error) {
	var err error
	var buf []byte
	if byteLimit != nil {
		buf, err = io.ReadAll(io.LimitReader(r, *byteLimit+1))
		if err == nil && int64(len(buf)) > *byteLimit {
			return nil, fmt.Errorf("wire: payload exceeds byte limit of %d", *byteLimit)
		}
	} else {
		buf, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}
	return decodeMessage(buf, sch, root)
}

func decodeMessage(buf []byte, sch *schema.Schema, desc *schema.MessageDescriptor) (*MessageValue, error) {
	msg := &MessageValue{TypeName: desc.Name}
	rest := buf
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, fmt.Errorf("wire: %q: %w", desc.Name, protowire.ParseError(n))
		}
		rest = rest[n:]

		fd := desc.FieldByNumber(int32(num))
		if fd == nil {
			raw, consumed, err := consumeRawValue(rest, typ)
			if err != nil {
				return nil, fmt.Errorf("wire: %q field %d (unknown): %w", desc.Name, num, err)
			}
			rest = rest[consumed:]
			msg.Fields = append(msg.Fields, FieldValue{
				FieldNumber: int32(num),
				RawUnknown:  raw,
				WireType:    int(typ),
			})
			continue
		}

		fv, consumed, err := decodeField(rest, typ, sch, fd)
		if err != nil {
			return nil, fmt.Errorf("wire: %q field %q: %w", desc.Name, fd.Name, err)
		}
		rest = rest[consumed:]
		fv.FieldNumber = int32(num)
		msg.Fields = append(msg.Fields, fv)
	}
	return msg, nil
}

func consumeRawValue(buf []byte, typ protowire.Type) ([]byte, int, error) {
	switch typ {
	case protowire.VarintType:
		_, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append([]byte(nil), buf[:n]...), n, nil
	case protowire.Fixed32Type:
		_, n := protowire.ConsumeFixed32(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append([]byte(nil), buf[:n]...), n, nil
	case protowire.Fixed64Type:
		_, n := protowire.ConsumeFixed64(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append([]byte(nil), buf[:n]...), n, nil
	case protowire.BytesType:
		_, n := protowire.ConsumeBytes(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append([]byte(nil), buf[:n]...), n, nil
	default:
		return nil, 0, fmt.Errorf("unsupported wire type %d", typ)
	}
}

func decodeField(buf []byte, typ protowire.Type, sch *schema.Schema, fd *schema.FieldDescriptor) (FieldValue, int, error) {
	if fd.IsMessage {
		v, n := protowire.ConsumeBytes(buf)
		if n < 0 {
			return FieldValue{}, 0, protowire.ParseError(n)
		}
		nestedDesc, ok := sch.Message(fd.TypeName)
		if !ok {
			return FieldValue{}, 0, fmt.Errorf("unresolved message type %q", fd.TypeName)
		}
		nested, err := decodeMessage(v, sch, nestedDesc)
		if err != nil {
			return FieldValue{}, 0, err
		}
		return FieldValue{Message: nested}, n, nil
	}

	scalar, n, err := decodeScalar(buf, typ, fd.Scalar)
	if err != nil {
		return FieldValue{}, 0, err
	}
	return FieldValue{Scalar: scalar}, n, nil
}

func decodeScalar(buf []byte, typ protowire.Type, kind schema.ScalarKind) (*ScalarValue, int, error) {
	switch {
	case kind.IsVarint():
		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		sv := &ScalarValue{}
		switch kind {
		case schema.ScalarBool:
			sv.Bool = v != 0
		case schema.ScalarSint32:
			sv.Int = protowire.DecodeZigZag(v)
		case schema.ScalarSint64:
			sv.Int = protowire.DecodeZigZag(v)
		case schema.ScalarInt32, schema.ScalarInt64, schema.ScalarEnum:
			sv.Int = int64(v)
		default: // uint32/uint64
			sv.Uint = v
		}
		return sv, n, nil
	case kind.Is32Fixed():
		v, n := protowire.ConsumeFixed32(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		sv := &ScalarValue{}
		if kind == schema.ScalarFloat {
			sv.Float = float64(math.Float32frombits(v))
		} else {
			sv.Uint = uint64(v)
		}
		return sv, n, nil
	case kind.Is64Fixed():
		v, n := protowire.ConsumeFixed64(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		sv := &ScalarValue{}
		if kind == schema.ScalarDouble {
			sv.Float = math.Float64frombits(v)
		} else {
			sv.Uint = v
		}
		return sv, n, nil
	case kind == schema.ScalarString:
		v, n := protowire.ConsumeBytes(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return &ScalarValue{Str: string(v)}, n, nil
	case kind == schema.ScalarBytes:
		v, n := protowire.ConsumeBytes(buf)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return &ScalarValue{Bytes: append([]byte(nil), v...)}, n, nil
	default:
		raw, n, err := consumeRawValue(buf, typ)
		if err != nil {
			return nil, 0, err
		}
		return &ScalarValue{Bytes: raw}, n, nil
	}
}
