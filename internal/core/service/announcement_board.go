package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

// AnnouncementBoard owns the announcements resource.
type AnnouncementBoard struct {
	store ports.RecordStore[domain.Announcement]
	now   func() time.Time
	log   zerolog.Logger
}

func NewAnnouncementBoard(store ports.RecordStore[domain.Announcement], log zerolog.Logger) *AnnouncementBoard {
	return &AnnouncementBoard{store: store, now: time.Now, log: log}
}

// Add posts a new announcement stamped with the current time.
func (b *AnnouncementBoard) Add(ctx context.Context, title, content, author string) (*domain.Announcement, error) {
	a := domain.Announcement{
		Title:   title,
		Content: content,
		Author:  author,
		Time:    domain.FormatTime(b.now()),
	}
	err := b.store.Update(ctx, func(all []domain.Announcement) ([]domain.Announcement, error) {
		return append(all, a), nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Info().Str("title", title).Str("author", author).Msg("announcement added")
	return &a, nil
}

// DeleteByTitle removes every announcement whose title equals title and
// returns how many were removed. Titles are not unique, so this may remove
// more than one.
func (b *AnnouncementBoard) DeleteByTitle(ctx context.Context, title string) (int, error) {
	removed := 0
	err := b.store.Update(ctx, func(all []domain.Announcement) ([]domain.Announcement, error) {
		removed = 0
		kept := all[:0]
		for _, a := range all {
			if a.Title == title {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 1 {
		b.log.Warn().Str("title", title).Int("removed", removed).Msg("deleted several announcements sharing a title")
	}
	return removed, nil
}

// List returns announcements in posting order.
func (b *AnnouncementBoard) List(ctx context.Context) []domain.Announcement {
	return b.store.Load(ctx)
}
