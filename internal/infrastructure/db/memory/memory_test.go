package memory

import (
	"context"
	"errors"
	"testing"
)

type rec struct{ Name string }

func TestStore_LoadReturnsCopy(t *testing.T) {
	s := New(rec{Name: "a"})
	got := s.Load(context.Background())
	got[0].Name = "changed"
	if s.Load(context.Background())[0].Name != "a" {
		t.Fatalf("Load leaked internal slice")
	}
}

func TestStore_SaveErr(t *testing.T) {
	s := New[rec]()
	s.SaveErr = errors.New("disk full")
	if err := s.Save(context.Background(), []rec{{Name: "a"}}); err == nil {
		t.Fatalf("expected error")
	}
	err := s.Update(context.Background(), func(r []rec) ([]rec, error) { return append(r, rec{}), nil })
	if err == nil {
		t.Fatalf("expected error from Update")
	}
	if n := len(s.Load(context.Background())); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

func TestStore_Update(t *testing.T) {
	s := New[rec]()
	for i := 0; i < 3; i++ {
		if err := s.Update(context.Background(), func(r []rec) ([]rec, error) {
			return append(r, rec{Name: "x"}), nil
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if n := len(s.Load(context.Background())); n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}
}
