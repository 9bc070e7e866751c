package kvstore

import (
	"context"
	"errors"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "a", record{Name: "tee", Count: 2}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got record
	if err := store.Get(ctx, "a", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "tee" || got.Count != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	var got record
	if err := store.Get(context.Background(), "missing", &got); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryStoreSetMulti(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.SetMulti(ctx, map[string]interface{}{
		"a": record{Name: "tee"},
		"b": []int{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("set multi: %v", err)
	}

	var a record
	if err := store.Get(ctx, "a", &a); err != nil || a.Name != "tee" {
		t.Fatalf("get a: %+v err=%v", a, err)
	}
	var b []int
	if err := store.Get(ctx, "b", &b); err != nil || len(b) != 3 {
		t.Fatalf("get b: %+v err=%v", b, err)
	}
}

func TestMemoryStoreSetMultiRejectsUnencodable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.SetMulti(ctx, map[string]interface{}{
		"ok":  record{Name: "tee"},
		"bad": make(chan int),
	})
	if err == nil {
		t.Fatal("expected an encoding error")
	}

	// Nothing from the failed batch is visible.
	var got record
	if err := store.Get(ctx, "ok", &got); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("failed batch must write nothing, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Set(ctx, "a", record{Name: "tee"})
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got record
	if err := store.Get(ctx, "a", &got); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}

	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting a missing key is a no-op, got %v", err)
	}
}
