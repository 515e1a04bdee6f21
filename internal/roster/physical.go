package roster

import "github.com/mediapoint/roster/internal/domain"

// ClassifyPhysical sets the physical delivery flags and picks one letter
// recipient per contract within shared households.
func ClassifyPhysical(records []domain.Subscriber, opts Options) ([]domain.Subscriber, error) {
	out := cloneAll(records)

	// Household size counts every record, eligible or not.
	households := groupBy(out, nil, func(s domain.Subscriber) string { return s.AddressKey })

	for i := range out {
		d := &out[i].Delivery
		d.Physical = out[i].WantsPhysical == opts.Affirmative
		shared := households.size(out[i].AddressKey) > 1
		d.PhysicalSingle = d.Physical && !shared
		d.PhysicalShared = d.Physical && shared
		d.PhysicalSharedPrimary = false
	}

	contracts := groupBy(out,
		func(s domain.Subscriber) bool { return s.Delivery.PhysicalShared },
		func(s domain.Subscriber) string { return s.ContractNumber },
	)
	for _, key := range contracts.keys {
		idx, ok, err := pickRepresentative(out, contracts.members[key], oldestIfAllNormal)
		if err != nil {
			return nil, err
		}
		if ok {
			out[idx].Delivery.PhysicalSharedPrimary = true
		}
	}
	return out, nil
}
