// Package idl implements the Anchor-format interface descriptor client:
// fetching and caching a program's IDL, sizing and encoding instruction
// arguments, building account-meta lists, and decoding typed account
// blobs. See spec §4.3.
package idl

import (
	"encoding/json"
	"fmt"

	"github.com/nosana-node/worker/internal/nerrors"
)

// IDL is the structured description of a program: its instructions and
// the account types it defines.
type IDL struct {
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []AccountDef  `json:"accounts"`
}

// Instruction describes one callable method: its ordered argument list and
// the ordered account-meta list an encoded call must supply.
type Instruction struct {
	Name     string          `json:"name"`
	Args     []Arg           `json:"args"`
	Accounts []AccountUsage  `json:"accounts"`
}

// Arg is one named, typed instruction argument.
type Arg struct {
	Name string  `json:"name"`
	Type TypeTag `json:"type"`
}

// AccountUsage names one entry in an instruction's account-meta list.
type AccountUsage struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

// AccountDef describes one account type: its discriminator name and the
// packed fields that follow the 8-byte discriminator on chain.
type AccountDef struct {
	Name string        `json:"name"`
	Type AccountFields `json:"type"`
}

// AccountFields is the `{fields: [...]}` wrapper Anchor puts around an
// account type's field list.
type AccountFields struct {
	Fields []Field `json:"fields"`
}

// Field is one named, typed account field, in declared order.
type Field struct {
	Name string  `json:"name"`
	Type TypeTag `json:"type"`
}

// FindInstruction returns the named instruction or an UnknownIdlType-style
// lookup miss; callers treat "not found" as a MissingAccount-adjacent
// programmer error rather than inventing a new kind for it.
func (d *IDL) FindInstruction(name string) (*Instruction, bool) {
	for i := range d.Instructions {
		if d.Instructions[i].Name == name {
			return &d.Instructions[i], true
		}
	}
	return nil, false
}

// FindAccount returns the named account type definition.
func (d *IDL) FindAccount(name string) (*AccountDef, bool) {
	for i := range d.Accounts {
		if d.Accounts[i].Name == name {
			return &d.Accounts[i], true
		}
	}
	return nil, false
}

// TypeTag is either a primitive ("u8", "u32", "u64", "i64", "publicKey")
// or a compound shape ({array: [inner, len]} or {vec: inner}). It
// round-trips through Anchor's JSON encoding, which represents primitives
// as bare strings and compounds as single-key objects.
type TypeTag struct {
	Primitive string
	Vec       *TypeTag
	ArrayOf   *TypeTag
	ArrayLen  int
}

func (t TypeTag) IsPrimitive() bool { return t.Primitive != "" }
func (t TypeTag) IsVec() bool       { return t.Vec != nil }
func (t TypeTag) IsArray() bool     { return t.ArrayOf != nil }

func (t TypeTag) String() string {
	switch {
	case t.IsVec():
		return fmt.Sprintf("vec<%s>", t.Vec.String())
	case t.IsArray():
		return fmt.Sprintf("array<%s;%d>", t.ArrayOf.String(), t.ArrayLen)
	default:
		return t.Primitive
	}
}

func (t *TypeTag) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		t.Primitive = asString
		return nil
	}

	var asCompound struct {
		Vec   *TypeTag          `json:"vec"`
		Array *[2]json.RawMessage `json:"array"`
	}
	if err := json.Unmarshal(b, &asCompound); err != nil {
		return fmt.Errorf("idl: unrecognized type tag %s: %w", string(b), err)
	}

	if asCompound.Vec != nil {
		t.Vec = asCompound.Vec
		return nil
	}

	if asCompound.Array != nil {
		var inner TypeTag
		if err := json.Unmarshal(asCompound.Array[0], &inner); err != nil {
			return fmt.Errorf("idl: bad array element type: %w", err)
		}
		var length int
		if err := json.Unmarshal(asCompound.Array[1], &length); err != nil {
			return fmt.Errorf("idl: bad array length: %w", err)
		}
		t.ArrayOf = &inner
		t.ArrayLen = length
		return nil
	}

	return &nerrors.UnknownIdlType{Type: string(b)}
}

func (t TypeTag) MarshalJSON() ([]byte, error) {
	switch {
	case t.IsVec():
		return json.Marshal(struct {
			Vec *TypeTag `json:"vec"`
		}{t.Vec})
	case t.IsArray():
		return json.Marshal(struct {
			Array [2]interface{} `json:"array"`
		}{[2]interface{}{t.ArrayOf, t.ArrayLen}})
	default:
		return json.Marshal(t.Primitive)
	}
}
