package storage_test

import (
	"errors"
	"testing"

	"github.com/wyzo-ops/orderbot-backend/internal/storage"
)

func TestSaveAndGetToken(t *testing.T) {
	store := storage.NewMemoryStore()

	if err := store.SaveToken(42, "token-abc"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	token, err := store.GetToken(42)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("got token %q, want %q", token, "token-abc")
	}
}

func TestSaveTokenOverwrites(t *testing.T) {
	store := storage.NewMemoryStore()

	if err := store.SaveToken(42, "first"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := store.SaveToken(42, "second"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	token, err := store.GetToken(42)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if token != "second" {
		t.Errorf("got token %q, want %q", token, "second")
	}
}

func TestGetTokenAbsent(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.GetToken(99)
	if !errors.Is(err, storage.ErrTokenNotFound) {
		t.Errorf("got err %v, want ErrTokenNotFound", err)
	}
}

func TestDeleteToken(t *testing.T) {
	store := storage.NewMemoryStore()

	if err := store.SaveToken(42, "token-abc"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := store.DeleteToken(42); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	if _, err := store.GetToken(42); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Errorf("got err %v after delete, want ErrTokenNotFound", err)
	}
}

func TestDeleteTokenAbsentIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()

	if err := store.DeleteToken(12345); err != nil {
		t.Errorf("DeleteToken on absent row failed: %v", err)
	}
}
