package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub record store
// ---------------------------------------------------------------------------

type stubStore[T any] struct {
	records []T
	saveErr  error // if set, Save and Update return this error
	checkErr error // returned by Check
	saves    int
}

func newStubStore[T any](records ...T) *stubStore[T] {
	return &stubStore[T]{records: append([]T{}, records...)}
}

func (s *stubStore[T]) Load(_ context.Context) []T {
	return append([]T{}, s.records...)
}

func (s *stubStore[T]) Save(_ context.Context, records []T) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records = append([]T{}, records...)
	return nil
}

func (s *stubStore[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	next, err := fn(s.Load(ctx))
	if err != nil {
		return err
	}
	return s.Save(ctx, next)
}

func (s *stubStore[T]) Check(_ context.Context) error {
	return s.checkErr
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func fixedClock(ts string) func() time.Time {
	t, err := time.ParseInLocation(domain.TimeLayout, ts, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

type fixture struct {
	users  *stubStore[domain.User]
	posts  *stubStore[domain.Announcement]
	logs   *stubStore[domain.LogEntry]
	dir    *UserDirectory
	board  *AnnouncementBoard
	audit  *AuditLog
	svc    *CommunityService
	admin  *domain.Identity
	member *domain.Identity
}

func newFixture(seed ...domain.User) *fixture {
	f := &fixture{
		users: newStubStore(seed...),
		posts: newStubStore[domain.Announcement](),
		logs:  newStubStore[domain.LogEntry](),
	}
	f.dir = NewUserDirectory(f.users, PlaintextHasher{}, false, discardLogger)
	f.board = NewAnnouncementBoard(f.posts, discardLogger)
	f.audit = NewAuditLog(f.logs, discardLogger)
	f.svc = NewCommunityService(NewGuard(RoleSourceSession, f.dir, discardLogger), f.dir, f.board, f.audit, discardLogger)
	f.admin = &domain.Identity{Username: "admin1", Role: domain.RoleSO}
	f.member = &domain.Identity{Username: "vip1", Role: "VIP"}
	return f
}
