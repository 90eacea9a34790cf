package mindflux

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"
)

// DueLimits bounds how much work a day's queue exposes.
// Zero values produce sensible defaults; see field comments.
type DueLimits struct {
	NewPerDay     int           `json:"new_per_day"`     // zero → 20; negative → unlimited
	ReviewsPerDay int           `json:"reviews_per_day"` // zero → 200; negative → unlimited
	LearnAhead    time.Duration `json:"learn_ahead"`     // zero → 20m; negative → none
}

func (l DueLimits) withDefaults() DueLimits {
	if l.NewPerDay == 0 {
		l.NewPerDay = 20
	}
	if l.ReviewsPerDay == 0 {
		l.ReviewsPerDay = 200
	}
	if l.LearnAhead == 0 {
		l.LearnAhead = 20 * time.Minute
	}
	if l.LearnAhead < 0 {
		l.LearnAhead = 0
	}
	return l
}

// EndOfDay returns the first instant of the day after t, in t's location.
// Review items due before it are due on t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// LearnAheadWindow returns how early Learning and Relearning items become
// due, after defaults are applied.
func (l DueLimits) LearnAheadWindow() time.Duration {
	return l.withDefaults().LearnAhead
}

// Classify returns the tier of rec at now. Learning and Relearning items are
// due up to learnAhead early; Review items are due for the whole calendar day
// (in now's location) they fall on.
func Classify(rec ItemRecord, now time.Time, learnAhead time.Duration) Tier {
	switch rec.State {
	case New:
		return TierNew
	case Learning, Relearning:
		if !rec.Due.After(now.Add(learnAhead)) {
			return TierLearning
		}
	case Review:
		if rec.Due.Before(EndOfDay(now)) {
			return TierReview
		}
	}
	return TierNotDue
}

// PartitionDue classifies records at now and returns the due items of each
// tier in due order, truncated to the daily limits.
func PartitionDue(records []ItemRecord, now time.Time, limits DueLimits) (learning, review, fresh []ItemRef) {
	limits = limits.withDefaults()

	var lrn, rev, nw []ItemRecord
	for _, rec := range records {
		switch Classify(rec, now, limits.LearnAhead) {
		case TierLearning:
			lrn = append(lrn, rec)
		case TierReview:
			rev = append(rev, rec)
		case TierNew:
			nw = append(nw, rec)
		}
	}

	byDue := func(a, b ItemRecord) int {
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	}
	slices.SortFunc(lrn, byDue)
	slices.SortFunc(rev, byDue)
	slices.SortFunc(nw, func(a, b ItemRecord) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})

	rev = truncate(rev, limits.ReviewsPerDay)
	nw = truncate(nw, limits.NewPerDay)

	return refs(lrn, TierLearning), refs(rev, TierReview), refs(nw, TierNew)
}

func truncate(recs []ItemRecord, limit int) []ItemRecord {
	if limit >= 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func refs(recs []ItemRecord, tier Tier) []ItemRef {
	out := make([]ItemRef, len(recs))
	for i, rec := range recs {
		out[i] = rec.ref(tier)
	}
	return out
}

// RecordIndexConfig configures a RecordIndex.
type RecordIndexConfig struct {
	Limits DueLimits
	Now    func() time.Time // nil → time.Now
}

// RecordIndex is an in-memory DueIndex over stored item records.
type RecordIndex struct {
	records []ItemRecord
	limits  DueLimits
	now     func() time.Time
}

var _ BatchDueIndex = (*RecordIndex)(nil)

// NewRecordIndex validates the records and builds a RecordIndex.
func NewRecordIndex(records []ItemRecord, cfg RecordIndexConfig) (*RecordIndex, error) {
	seen := make(map[ItemID]struct{}, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[rec.ItemID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItem, rec.ItemID)
		}
		seen[rec.ItemID] = struct{}{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &RecordIndex{
		records: slices.Clone(records),
		limits:  cfg.Limits,
		now:     now,
	}, nil
}

// DueAll implements BatchDueIndex: every tier is classified at a single
// reading of the clock.
func (x *RecordIndex) DueAll(ctx context.Context) (learning, review, fresh []ItemRef, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	learning, review, fresh = PartitionDue(x.records, x.now(), x.limits)
	return learning, review, fresh, nil
}

// DuePerTier implements DueIndex.
func (x *RecordIndex) DuePerTier(ctx context.Context, tier Tier) ([]ItemRef, error) {
	if !tier.IsDue() {
		return nil, fmt.Errorf("%w: %v is not a due tier", ErrInvalidTier, tier)
	}
	learning, review, fresh, err := x.DueAll(ctx)
	if err != nil {
		return nil, err
	}
	return [TierNotDue][]ItemRef{TierLearning: learning, TierReview: review, TierNew: fresh}[tier], nil
}
