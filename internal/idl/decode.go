package idl

import (
	"encoding/binary"
	"math/big"

	"github.com/nosana-node/worker/internal/nerrors"
)

// decodeValue reads one value of type t starting at data[offset] and
// returns it along with the offset immediately after it. Vecs read a
// 4-byte little-endian count followed by that many elements; every other
// shape is fixed width (§4.3's decoding-side vec rule).
func decodeValue(t TypeTag, data []byte, offset int) (Value, int, error) {
	switch {
	case t.IsVec():
		if offset+4 > len(data) {
			return nil, 0, &nerrors.UnknownIdlType{Type: "truncated vec length for " + t.String()}
		}
		count := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		out := make(VecValue, 0, count)
		for i := 0; i < count; i++ {
			el, next, err := decodeValue(*t.Vec, data, offset)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, el)
			offset = next
		}
		return out, offset, nil

	case t.IsArray():
		out := make(ArrayValue, 0, t.ArrayLen)
		for i := 0; i < t.ArrayLen; i++ {
			el, next, err := decodeValue(*t.ArrayOf, data, offset)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, el)
			offset = next
		}
		return out, offset, nil

	default:
		size, err := SizeOf(t)
		if err != nil {
			return nil, 0, err
		}
		if offset+size > len(data) {
			return nil, 0, &nerrors.UnknownIdlType{Type: "truncated field for " + t.String()}
		}
		chunk := data[offset : offset+size]

		switch t.Primitive {
		case "u8":
			return U8(chunk[0]), offset + size, nil
		case "u32":
			return U32(binary.LittleEndian.Uint32(chunk)), offset + size, nil
		case "u64":
			return U64{new(big.Int).SetUint64(binary.LittleEndian.Uint64(chunk))}, offset + size, nil
		case "i64":
			return I64{big.NewInt(int64(binary.LittleEndian.Uint64(chunk)))}, offset + size, nil
		case "publicKey":
			var pk Pubkey
			copy(pk[:], chunk)
			return pk, offset + size, nil
		default:
			return nil, 0, &nerrors.UnknownIdlType{Type: t.Primitive}
		}
	}
}

// DecodeAccount verifies the 8-byte account discriminator (unless
// skipDiscriminatorCheck is set, for callers who already validated it via
// a getProgramAccounts filter) and decodes every declared field in order,
// returning name → Value.
func DecodeAccount(program *IDL, typeName string, data []byte, skipDiscriminatorCheck bool) (map[string]Value, error) {
	def, ok := program.FindAccount(typeName)
	if !ok {
		return nil, &nerrors.UnknownIdlType{Type: "unknown account type " + typeName}
	}

	if len(data) < 8 {
		return nil, &nerrors.UnknownIdlType{Type: "account blob shorter than discriminator"}
	}

	if !skipDiscriminatorCheck {
		want := AccountDiscriminator(typeName)
		for i := 0; i < 8; i++ {
			if data[i] != want[i] {
				return nil, &nerrors.UnknownIdlType{Type: "discriminator mismatch for " + typeName}
			}
		}
	}

	offset := 8
	out := make(map[string]Value, len(def.Type.Fields))
	for _, f := range def.Type.Fields {
		v, next, err := decodeValue(f.Type, data, offset)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
		offset = next
	}
	return out, nil
}
