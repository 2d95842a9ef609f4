package multitoken

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

// addr builds a test address from one distinguishing byte.
func addr(b byte) Address {
	var a Address
	a[len(a)-1] = b
	return a
}

func TestRegistry_CreateAndInfo(t *testing.T) {
	r := NewRegistry()

	info := AssetInfo{Name: "Gold", Symbol: "GLD", Decimals: 2, TotalSupply: uint256.NewInt(100)}
	if err := r.Create(1, info); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got := r.Info(1)
	if got.Name != "Gold" || got.Symbol != "GLD" || got.Decimals != 2 {
		t.Errorf("unexpected info: %+v", got)
	}
	if !got.TotalSupply.Eq(uint256.NewInt(100)) {
		t.Errorf("expected supply 100, got %s", got.TotalSupply.Dec())
	}
}

func TestRegistry_CreateCollision(t *testing.T) {
	r := NewRegistry()

	if err := r.Create(1, AssetInfo{Name: "Gold", Symbol: "GLD"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := r.Create(1, AssetInfo{Name: "Other", Symbol: "OTH"})
	if !errors.Is(err, ErrAlreadyInUse) {
		t.Errorf("expected ErrAlreadyInUse, got %v", err)
	}
}

func TestRegistry_InfoAbsentIsZeroValued(t *testing.T) {
	r := NewRegistry()

	got := r.Info(42)
	if got.Name != "" || got.Symbol != "" || got.Decimals != 0 {
		t.Errorf("expected zero-valued info, got %+v", got)
	}
	if got.TotalSupply == nil || !got.TotalSupply.IsZero() {
		t.Errorf("expected zero supply, got %v", got.TotalSupply)
	}
}

func TestRegistry_InfoReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if err := r.Create(1, AssetInfo{Name: "Gold", TotalSupply: uint256.NewInt(5)}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	r.Info(1).TotalSupply.SetUint64(999)
	if !r.Info(1).TotalSupply.Eq(uint256.NewInt(5)) {
		t.Error("mutating returned info leaked into the registry")
	}
}

func TestRegistry_InUse(t *testing.T) {
	r := NewRegistry()

	// Created with zero supply: registered but not in use.
	if err := r.Create(1, AssetInfo{Name: "Gold", Symbol: "GLD"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.InUse(1) {
		t.Error("zero-supply id should not be in use")
	}
	if !r.Created(1) {
		t.Error("created id should be registered")
	}
	if err := r.AssertInUse(1); !errors.Is(err, ErrNotInUse) {
		t.Errorf("expected ErrNotInUse, got %v", err)
	}

	if err := r.Create(2, AssetInfo{Name: "Silver", TotalSupply: uint256.NewInt(10)}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := r.AssertInUse(2); err != nil {
		t.Errorf("in-use id rejected: %v", err)
	}
}

func TestRegistry_AssertInUseBatch(t *testing.T) {
	r := NewRegistry()
	if err := r.Create(1, AssetInfo{Name: "Gold", TotalSupply: uint256.NewInt(10)}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := r.AssertInUseBatch([]TokenID{1, 1}); err != nil {
		t.Errorf("all in use, got %v", err)
	}
	if err := r.AssertInUseBatch([]TokenID{1, 7}); !errors.Is(err, ErrNotInUse) {
		t.Errorf("expected ErrNotInUse, got %v", err)
	}
}
