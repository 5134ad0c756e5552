package wire

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/termproto/pbedit/internal/schema"
)

// Encode serializes msg back to the wire format, writing fields in the
// order they currently appear in msg.Fields (storage order, not
// necessarily field-number order) so that an edited document's on-disk
// encoding stays close to its on-screen presentation order.
func Encode(w io.Writer, sch *schema.Schema, desc *schema.MessageDescriptor, msg *MessageValue) error {
	buf, err := encodeMessage(sch, desc, msg)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func encodeMessage(sch *schema.Schema, desc *schema.MessageDescriptor, msg *MessageValue) ([]byte, error) {
	var out []byte
	for _, f := range msg.Fields {
		if f.RawUnknown != nil {
			out = protowire.AppendTag(out, protowire.Number(f.FieldNumber), protowire.Type(f.WireType))
			out = append(out, f.RawUnknown...)
			continue
		}
		fd := desc.FieldByNumber(f.FieldNumber)
		if fd == nil {
			return nil, fmt.Errorf("wire: encode %q: field %d has no descriptor and no raw payload", desc.Name, f.FieldNumber)
		}
		encoded, err := encodeField(sch, fd, f)
		if err != nil {
			return nil, fmt.Errorf("wire: encode %q field %q: %w", desc.Name, fd.Name, err)
		}
		out = append(out, encoded...)
	}
	return out, nil
}

func encodeField(sch *schema.Schema, fd *schema.FieldDescriptor, f FieldValue) ([]byte, error) {
	num := protowire.Number(f.FieldNumber)
	if fd.IsMessage {
		if f.Message == nil {
			return nil, fmt.Errorf("message field carries no message value")
		}
		nestedDesc, ok := sch.Message(fd.TypeName)
		if !ok {
			return nil, fmt.Errorf("unresolved message type %q", fd.TypeName)
		}
		body, err := encodeMessage(sch, nestedDesc, f.Message)
		if err != nil {
			return nil, err
		}
		var out []byte
		out = protowire.AppendTag(out, num, protowire.BytesType)
		out = protowire.AppendBytes(out, body)
		return out, nil
	}
	if f.Scalar == nil {
		return nil, fmt.Errorf("scalar field carries no scalar value")
	}
	return encodeScalar(num, fd.Scalar, f.Scalar), nil
}

func encodeScalar(num protowire.Number, kind schema.ScalarKind, sv *ScalarValue) []byte {
	var out []byte
	switch {
	case kind.IsVarint():
		out = protowire.AppendTag(out, num, protowire.VarintType)
		switch kind {
		case schema.ScalarBool:
			v := uint64(0)
			if sv.Bool {
				v = 1
			}
			out = protowire.AppendVarint(out, v)
		case schema.ScalarSint32, schema.ScalarSint64:
			out = protowire.AppendVarint(out, protowire.EncodeZigZag(sv.Int))
		case schema.ScalarInt32, schema.ScalarInt64, schema.ScalarEnum:
			out = protowire.AppendVarint(out, uint64(sv.Int))
		default:
			out = protowire.AppendVarint(out, sv.Uint)
		}
	case kind.Is32Fixed():
		out = protowire.AppendTag(out, num, protowire.Fixed32Type)
		if kind == schema.ScalarFloat {
			out = protowire.AppendFixed32(out, math.Float32bits(float32(sv.Float)))
		} else {
			out = protowire.AppendFixed32(out, uint32(sv.Uint))
		}
	case kind.Is64Fixed():
		out = protowire.AppendTag(out, num, protowire.Fixed64Type)
		if kind == schema.ScalarDouble {
			out = protowire.AppendFixed64(out, math.Float64bits(sv.Float))
		} else {
			out = protowire.AppendFixed64(out, sv.Uint)
		}
	case kind == schema.ScalarString:
		out = protowire.AppendTag(out, num, protowire.BytesType)
		out = protowire.AppendString(out, sv.Str)
	case kind == schema.ScalarBytes:
		out = protowire.AppendTag(out, num, protowire.BytesType)
		out = protowire.AppendBytes(out, sv.Bytes)
	}
	return out
}
