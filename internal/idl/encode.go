package idl

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/nerrors"
)

// encodeValue appends the packed wire representation of v (typed as t) to
// buf. Primitives and arrays are little-endian and fixed width; vecs are
// a 4-byte little-endian count followed by that many packed elements
// (§4.3's encoding-side vec rule - decode.go reads the same shape back).
func encodeValue(buf []byte, t TypeTag, v Value) ([]byte, error) {
	switch {
	case t.IsVec():
		vv, ok := v.(VecValue)
		if !ok {
			return nil, &nerrors.UnknownIdlType{Type: "expected vec value for " + t.String()}
		}
		lenPrefix := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenPrefix, uint32(len(vv)))
		buf = append(buf, lenPrefix...)
		for _, el := range vv {
			var err error
			buf, err = encodeValue(buf, *t.Vec, el)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case t.IsArray():
		av, ok := v.(ArrayValue)
		if !ok {
			return nil, &nerrors.UnknownIdlType{Type: "expected array value for " + t.String()}
		}
		if len(av) != t.ArrayLen {
			return nil, &nerrors.UnknownIdlType{Type: "array length mismatch for " + t.String()}
		}
		for _, el := range av {
			var err error
			buf, err = encodeValue(buf, *t.ArrayOf, el)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	default:
		switch t.Primitive {
		case "u8":
			u, ok := v.(U8)
			if !ok {
				return nil, &nerrors.UnknownIdlType{Type: "expected u8"}
			}
			return append(buf, byte(u)), nil

		case "u32":
			u, ok := v.(U32)
			if !ok {
				return nil, &nerrors.UnknownIdlType{Type: "expected u32"}
			}
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, uint32(u))
			return append(buf, b...), nil

		case "u64":
			u, ok := v.(U64)
			if !ok {
				return nil, &nerrors.UnknownIdlType{Type: "expected u64"}
			}
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, u.Uint64())
			return append(buf, b...), nil

		case "i64":
			i, ok := v.(I64)
			if !ok {
				return nil, &nerrors.UnknownIdlType{Type: "expected i64"}
			}
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, uint64(i.Int64()))
			return append(buf, b...), nil

		case "publicKey":
			pk, ok := v.(Pubkey)
			if !ok {
				return nil, &nerrors.UnknownIdlType{Type: "expected publicKey"}
			}
			return append(buf, pk[:]...), nil

		default:
			return nil, &nerrors.UnknownIdlType{Type: t.Primitive}
		}
	}
}

// EncodeInstruction builds the payload (8-byte method discriminator ‖
// packed args) for a call to instruction `name`, and the ordered
// account-meta list produced by resolving instruction.Accounts against
// `accounts` (name → public key). Resolution failure is a MissingAccount
// error and never touches the network - callers are expected to build and
// validate entirely offline before submitting.
func EncodeInstruction(program *IDL, name string, args map[string]Value, accounts map[string]solana.PublicKey) ([]byte, solana.AccountMetaSlice, error) {
	instr, ok := program.FindInstruction(name)
	if !ok {
		return nil, nil, &nerrors.UnknownIdlType{Type: "unknown instruction " + name}
	}

	disc := MethodDiscriminator(name)
	payload := append([]byte{}, disc[:]...)

	for _, arg := range instr.Args {
		v, present := args[arg.Name]
		if !present {
			return nil, nil, &nerrors.UnknownIdlType{Type: "missing argument " + arg.Name + " for " + name}
		}
		var err error
		payload, err = encodeValue(payload, arg.Type, v)
		if err != nil {
			return nil, nil, err
		}
	}

	metas := make(solana.AccountMetaSlice, 0, len(instr.Accounts))
	for _, acctSpec := range instr.Accounts {
		pk, present := accounts[acctSpec.Name]
		if !present {
			return nil, nil, &nerrors.MissingAccount{Instruction: name, Name: acctSpec.Name}
		}
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  pk,
			IsWritable: acctSpec.IsMut,
			IsSigner:   acctSpec.IsSigner,
		})
	}

	return payload, metas, nil
}
