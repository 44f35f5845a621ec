package idl

import (
	"github.com/mr-tron/base58"
	"github.com/nosana-node/worker/internal/nerrors"
)

// MemcmpFilter is the byte-offset-and-bytes shape getProgramAccounts sends
// over RPC; internal/rpcclient translates this straight into the
// `{memcmp: {offset, bytes}}` JSON-RPC filter object.
type MemcmpFilter struct {
	Offset int
	Bytes  []byte
}

// BuildMemcmpFilters translates operator-supplied `{fieldName -> value}`
// equality filters into byte-offset memcmp filters against the declared
// layout of accountType, per §4.3's program-account scan. A field that
// doesn't exist on the account type fails before any RPC call is made -
// this function performs no I/O.
func BuildMemcmpFilters(program *IDL, accountType string, equals map[string]Value) ([]MemcmpFilter, error) {
	def, ok := program.FindAccount(accountType)
	if !ok {
		return nil, &nerrors.UnknownIdlType{Type: "unknown account type " + accountType}
	}

	offsets := make(map[string]int, len(def.Type.Fields))
	offset := 8
	for _, f := range def.Type.Fields {
		offsets[f.Name] = offset
		if f.Type.IsVec() {
			// Fields after a vec have no static offset; leaving them out of
			// offsets rejects them below like an unknown field.
			break
		}
		size, err := fieldWireSize(f.Type)
		if err != nil {
			return nil, err
		}
		offset += size
	}

	filters := make([]MemcmpFilter, 0, len(equals))
	for name, val := range equals {
		fieldOffset, ok := offsets[name]
		if !ok {
			return nil, &nerrors.UnknownIdlType{Type: "field not present on " + accountType + ": " + name}
		}
		fieldType := fieldTypeByName(def, name)
		b, err := encodeValue(nil, fieldType, val)
		if err != nil {
			return nil, err
		}
		filters = append(filters, MemcmpFilter{Offset: fieldOffset, Bytes: b})
	}
	return filters, nil
}

func fieldTypeByName(def *AccountDef, name string) TypeTag {
	for _, f := range def.Type.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return TypeTag{}
}

// fieldWireSize is SizeOf for the common fixed-width fields, but callers
// building offsets past a vec field can't compute a static layout; a
// memcmp filter on a field after a vec is therefore rejected the same way
// an unknown field is.
func fieldWireSize(t TypeTag) (int, error) {
	return SizeOf(t)
}

// EncodeCIDv0 is a small convenience: render a 32-byte SHA-256 digest as a
// CIDv0 base58 string (0x12 0x20 prefix per §6). Nothing else in the
// module calls it; job blobs are rendered by ipfs.CIDFromJobBlob.
func EncodeCIDv0(digest [32]byte) string {
	full := append([]byte{0x12, 0x20}, digest[:]...)
	return base58.Encode(full)
}
