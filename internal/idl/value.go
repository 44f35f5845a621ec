package idl

import "math/big"

// Value is the tagged sum decoded account fields and encoded instruction
// arguments are expressed in. Higher layers know the expected shape from
// the IDL, so this stays a plain closed set rather than a schema-carrying
// type (§9 design notes).
type Value interface {
	isValue()
}

type U8 uint8

func (U8) isValue() {}

type U32 uint32

func (U32) isValue() {}

// U64 and I64 hold arbitrary-precision integers so a full 64-bit value
// never silently overflows a machine int during decode.
type U64 struct{ *big.Int }

func (U64) isValue() {}

func NewU64(v uint64) U64 { return U64{new(big.Int).SetUint64(v)} }

type I64 struct{ *big.Int }

func (I64) isValue() {}

func NewI64(v int64) I64 { return I64{big.NewInt(v)} }

// Pubkey is a raw 32-byte public key value.
type Pubkey [32]byte

func (Pubkey) isValue() {}

// VecValue is a decoded/encoded `vec<T>`.
type VecValue []Value

func (VecValue) isValue() {}

// ArrayValue is a decoded/encoded `[T; N]`.
type ArrayValue []Value

func (ArrayValue) isValue() {}
