package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// verseReferences is the fixed rotation for the devotional bulletin.
// The day's reference is references[ordinal(today) mod len], so every
// visitor sees the same verse on a given date.
var verseReferences = []string{
	"Psalm 23:1", "Proverbs 3:5-6", "Matthew 6:33", "John 3:16", "Romans 8:28",
	"Philippians 4:13", "Hebrews 11:1", "James 1:5", "1 Peter 5:7", "Revelation 21:4",
}

// VerseStore caches resolved verses by ISO date.
type VerseStore interface {
	GetVerse(ctx context.Context, date string) (reference, text string, ok bool, err error)
	PutVerse(ctx context.Context, date, reference, text string) error
}

// VerseLookup fetches verse text from the external service.
type VerseLookup interface {
	Lookup(ctx context.Context, reference string) (string, error)
}

// VerseOfTheDay returns today's devotional verse. The cache guarantees
// at most one external call per calendar date; on any lookup failure the
// bare reference doubles as the text.
func VerseOfTheDay(ctx context.Context, store VerseStore, lookup VerseLookup, logger *zap.Logger, today time.Time) (string, string, error) {
	dateKey := today.Format("2006-01-02")

	if ref, text, ok, err := store.GetVerse(ctx, dateKey); err == nil && ok {
		return ref, text, nil
	} else if err != nil {
		return "", "", err
	}

	ref := verseReferences[dayOrdinal(today)%len(verseReferences)]

	text, err := lookup.Lookup(ctx, ref)
	if err != nil {
		logger.Warn("Verse lookup failed, falling back to reference",
			zap.String("reference", ref), zap.Error(err))
		text = ref
	}

	if err := store.PutVerse(ctx, dateKey, ref, text); err != nil {
		// Caching is best-effort; the verse itself is already resolved.
		logger.Warn("Failed to cache verse", zap.Error(err))
	}
	return ref, text, nil
}

// dayOrdinal counts whole days since the Unix epoch in the date's own
// calendar terms, so the rotation advances exactly once per date.
func dayOrdinal(t time.Time) int {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / 86400)
}
