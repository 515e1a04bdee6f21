package roster

import (
	"sort"

	"github.com/mediapoint/roster/internal/domain"
)

// ClassifyDigital sets the digital delivery flags, picks one mailing-list
// recipient per email and numbers the remaining family members.
func ClassifyDigital(records []domain.Subscriber, opts Options) ([]domain.Subscriber, error) {
	out := cloneAll(records)

	for i := range out {
		out[i].Delivery.Digital = out[i].WantsDigital == opts.Affirmative
		out[i].Delivery.DigitalSingle = false
		out[i].Delivery.DigitalShared = false
		out[i].Delivery.MailingListPrimary = false
		out[i].Delivery.FamilyMember = false
		out[i].Delivery.FamilyOrdinal = 0
	}

	emails := groupBy(out,
		func(s domain.Subscriber) bool { return s.Delivery.Digital },
		func(s domain.Subscriber) string { return s.Email },
	)

	for _, key := range emails.keys {
		members := emails.members[key]
		if len(members) == 1 {
			d := &out[members[0]].Delivery
			d.DigitalSingle = true
			d.MailingListPrimary = true
			continue
		}

		for _, m := range members {
			out[m].Delivery.DigitalShared = true
		}
		rep, _, err := pickRepresentative(out, members, oldestAlways)
		if err != nil {
			return nil, err
		}
		out[rep].Delivery.MailingListPrimary = true

		rest := make([]int, 0, len(members)-1)
		for _, m := range members {
			if m != rep {
				out[m].Delivery.FamilyMember = true
				rest = append(rest, m)
			}
		}

		// The earliest-born non-representative leaves the family again,
		// which yields a second representative per email. Candidate for
		// product-owner clarification.
		oldest, err := earliestBorn(out, rest)
		if err != nil {
			return nil, err
		}
		out[oldest].Delivery.FamilyMember = false
	}

	assignFamilyOrdinals(out)
	return out, nil
}

// assignFamilyOrdinals numbers confirmed family members per email by
// ascending birth date, starting at 1. Equal dates keep record order.
func assignFamilyOrdinals(records []domain.Subscriber) {
	families := groupBy(records,
		func(s domain.Subscriber) bool { return s.Delivery.FamilyMember },
		func(s domain.Subscriber) string { return s.Email },
	)
	for _, key := range families.keys {
		members := append([]int(nil), families.members[key]...)
		sort.SliceStable(members, func(a, b int) bool {
			return records[members[a]].BirthDate.Before(records[members[b]].BirthDate)
		})
		for n, m := range members {
			records[m].Delivery.FamilyOrdinal = n + 1
		}
	}
}
