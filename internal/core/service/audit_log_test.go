package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kp9community/portal/internal/core/domain"
)

func TestAuditLog_AppendStampsTime(t *testing.T) {
	store := newStubStore[domain.LogEntry]()
	audit := NewAuditLog(store, discardLogger)
	audit.now = fixedClock("2024-03-01 09:30:00")

	e, err := audit.Append(context.Background(), "admin1", domain.ActionAddUser, "a1")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	want := domain.LogEntry{Time: "2024-03-01 09:30:00", Actor: "admin1", Action: domain.ActionAddUser, Target: "a1"}
	if *e != want {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if len(store.records) != 1 || store.records[0] != want {
		t.Fatalf("entry not persisted: %+v", store.records)
	}
}

func TestAuditLog_AppendDefaultsTargetEmpty(t *testing.T) {
	audit := NewAuditLog(newStubStore[domain.LogEntry](), discardLogger)
	e, err := audit.Append(context.Background(), "admin1", "login", "")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if e.Target != "" {
		t.Fatalf("expected empty target, got %q", e.Target)
	}
}

func TestAuditLog_AppendStorageFailure(t *testing.T) {
	store := newStubStore[domain.LogEntry]()
	store.saveErr = errors.New("read-only filesystem")
	audit := NewAuditLog(store, discardLogger)

	if _, err := audit.Append(context.Background(), "admin1", domain.ActionAddUser, "a1"); !errors.Is(err, store.saveErr) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}

func TestAuditLog_RecentMatchesTailOfAll(t *testing.T) {
	audit := NewAuditLog(newStubStore[domain.LogEntry](), discardLogger)
	for i := 0; i < 7; i++ {
		if _, err := audit.Append(context.Background(), "admin1", "act", fmt.Sprintf("t%d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all := audit.All(context.Background())
	if len(all) != 7 || all[0].Target != "t6" || all[6].Target != "t0" {
		t.Fatalf("All must be newest first: %+v", all)
	}

	for _, n := range []int{0, 1, 5, 7, 10} {
		recent := audit.Recent(context.Background(), n)
		want := n
		if want > 7 {
			want = 7
		}
		if len(recent) != want {
			t.Fatalf("Recent(%d): expected %d entries, got %d", n, want, len(recent))
		}
		for i := range recent {
			if recent[i] != all[i] {
				t.Fatalf("Recent(%d)[%d] = %+v, want %+v", n, i, recent[i], all[i])
			}
		}
	}

	if got := audit.Recent(context.Background(), -3); len(got) != 0 {
		t.Fatalf("negative n should return nothing, got %d", len(got))
	}
}

func TestAuditLog_ReadDoesNotReorderStorage(t *testing.T) {
	store := newStubStore(
		domain.LogEntry{Target: "first"},
		domain.LogEntry{Target: "second"},
	)
	audit := NewAuditLog(store, discardLogger)
	_ = audit.All(context.Background())
	_ = audit.Recent(context.Background(), 2)

	if store.records[0].Target != "first" || store.records[1].Target != "second" {
		t.Fatalf("reads mutated stored order: %+v", store.records)
	}
}
