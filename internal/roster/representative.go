package roster

import (
	"github.com/mediapoint/roster/internal/domain"
)

// tieBreak selects how a group without a priority member is resolved.
type tieBreak int

const (
	// oldestIfAllNormal falls back to the earliest birth date only when
	// every member has priority 0. Mixed priorities leave the group without
	// a representative.
	oldestIfAllNormal tieBreak = iota
	// oldestAlways falls back to the earliest birth date unconditionally.
	oldestAlways
)

// pickRepresentative returns the index of the member that receives the
// item: the first member with priority 1, otherwise the earliest born.
// ok is false when the policy assigns no representative.
func pickRepresentative(records []domain.Subscriber, members []int, policy tieBreak) (idx int, ok bool, err error) {
	for _, m := range members {
		if records[m].Priority == 1 {
			return m, true, nil
		}
	}
	if policy == oldestIfAllNormal {
		for _, m := range members {
			if records[m].Priority != 0 {
				return 0, false, nil
			}
		}
	}
	idx, err = earliestBorn(records, members)
	if err != nil {
		return 0, false, err
	}
	return idx, true, nil
}

// earliestBorn returns the member with the earliest birth date, ties going
// to the earlier record. Every member must have a birth date.
func earliestBorn(records []domain.Subscriber, members []int) (int, error) {
	best := -1
	for _, m := range members {
		r := records[m]
		if !r.HasBirthDate() {
			return 0, &RowError{Row: r.Row, Column: string(ColBirthDate), Err: ErrIncompleteRecord}
		}
		if best < 0 || r.BirthDate.Before(records[best].BirthDate) {
			best = m
		}
	}
	return best, nil
}
