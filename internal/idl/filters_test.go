package idl

import (
	"testing"

	"github.com/nosana-node/worker/internal/nerrors"
)

func TestBuildMemcmpFilters_ComputesFieldOffset(t *testing.T) {
	def := &IDL{
		Accounts: []AccountDef{
			{
				Name: "RunAccount",
				Type: AccountFields{Fields: []Field{
					{Name: "job", Type: TypeTag{Primitive: "publicKey"}},
					{Name: "node", Type: TypeTag{Primitive: "publicKey"}},
				}},
			},
		},
	}

	var nodeKey Pubkey
	for i := range nodeKey {
		nodeKey[i] = 0x07
	}

	filters, err := BuildMemcmpFilters(def, "RunAccount", map[string]Value{"node": nodeKey})
	if err != nil {
		t.Fatalf("BuildMemcmpFilters: %v", err)
	}
	if len(filters) != 1 {
		t.Fatalf("filter count = %d, want 1", len(filters))
	}
	// offset = 8 (discriminator) + 32 (job) = 40
	if filters[0].Offset != 40 {
		t.Fatalf("offset = %d, want 40", filters[0].Offset)
	}
	if len(filters[0].Bytes) != 32 {
		t.Fatalf("filter byte length = %d, want 32", len(filters[0].Bytes))
	}
}

func TestBuildMemcmpFilters_UnknownFieldFailsBeforeRPC(t *testing.T) {
	def := &IDL{
		Accounts: []AccountDef{
			{Name: "RunAccount", Type: AccountFields{Fields: []Field{
				{Name: "job", Type: TypeTag{Primitive: "publicKey"}},
			}}},
		},
	}

	_, err := BuildMemcmpFilters(def, "RunAccount", map[string]Value{"nonexistent": U8(1)})
	if err == nil {
		t.Fatalf("expected UnknownIdlType, got nil")
	}
	if _, ok := err.(*nerrors.UnknownIdlType); !ok {
		t.Fatalf("expected *nerrors.UnknownIdlType, got %T", err)
	}
}

func TestEncodeCIDv0_PrefixesMultihashHeader(t *testing.T) {
	var digest [32]byte
	for i := range digest {
		digest[i] = byte(i)
	}
	cid := EncodeCIDv0(digest)
	if len(cid) == 0 {
		t.Fatalf("EncodeCIDv0 returned empty string")
	}
}
