// Package sequence produces the human-facing identifiers attached to
// reports, emergencies, and users. Reports and emergencies draw zero-padded
// numbers from named counters; user IDs combine the registration year with
// a per-year counter ("2026-07").
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/rcabrera/citywatch/internal/server/repositories/counters"
)

// ReportIDWidth is the minimum digit count of report and emergency IDs.
// Values past the width simply widen ("999" is followed by "1000").
const ReportIDWidth = 3

const userIDWidth = 2

type Allocator struct {
	counters counters.Repository

	// Now is the clock used to derive the user-ID year. Overridable in tests.
	Now func() time.Time
}

func NewAllocator(c counters.Repository) *Allocator {
	return &Allocator{counters: c, Now: time.Now}
}

// NextID allocates the next value of the named counter and formats it as a
// decimal string zero-padded to at least width digits. Allocation order is
// decided solely by the counter's atomic increment; no secondary ordering
// is consulted. On failure nothing is issued and the enclosing creation
// must abort.
func (a *Allocator) NextID(ctx context.Context, key string, width int) (string, error) {
	seq, err := a.counters.IncrementAndGet(ctx, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", width, seq), nil
}

// UserCounterKey returns the counter key backing user IDs for one year.
func UserCounterKey(year int) string {
	return fmt.Sprintf("userId-%d", year)
}

// NextUserID allocates a "<year>-<NN>" identifier from the current year's
// counter. The increment is atomic, so concurrent registrations always get
// distinct IDs, and the counter restarts at 01 each calendar year.
func (a *Allocator) NextUserID(ctx context.Context) (string, error) {
	year := a.Now().Year()
	seq, err := a.counters.IncrementAndGet(ctx, UserCounterKey(year))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%0*d", year, userIDWidth, seq), nil
}
