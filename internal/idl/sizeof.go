package idl

import "github.com/nosana-node/worker/internal/nerrors"

// pubkeySize is always 32. The source material the spec distills from
// also produces a 40-byte publicKey size along one sizing path; §4.3 and
// §9 call that out as a bug and mandate a single, consistent 32-byte size
// everywhere, which is what this implementation does.
const pubkeySize = 32

// SizeOf returns the packed byte width of a fixed-size type: primitives
// and arrays. Vectors have no fixed size (encode/decode them directly; see
// encode.go and decode.go), so SizeOf rejects them.
func SizeOf(t TypeTag) (int, error) {
	switch {
	case t.IsVec():
		return 0, &nerrors.UnknownIdlType{Type: "vec has no fixed size: " + t.String()}

	case t.IsArray():
		inner, err := SizeOf(*t.ArrayOf)
		if err != nil {
			return 0, err
		}
		return inner * t.ArrayLen, nil

	default:
		switch t.Primitive {
		case "u8":
			return 1, nil
		case "u32":
			return 4, nil
		case "u64", "i64":
			return 8, nil
		case "publicKey":
			return pubkeySize, nil
		default:
			return 0, &nerrors.UnknownIdlType{Type: t.Primitive}
		}
	}
}

// ArgPayloadSize sums 8 (discriminator) plus the fixed size of every
// argument; for an instruction whose args include a vec, callers should
// use the actual encoded length instead (vec contributes 4 + len*elemSize,
// which SizeOf can't know without a value). This helper covers the common
// invariant check in §8 for instructions with no vec arguments.
func ArgPayloadSize(args []Arg) (int, error) {
	total := 8
	for _, a := range args {
		if a.Type.IsVec() {
			return 0, &nerrors.UnknownIdlType{Type: "vec arg has no static size: " + a.Name}
		}
		n, err := SizeOf(a.Type)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
