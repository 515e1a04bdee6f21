package domain

// Delivery carries the classification flags set by the physical and digital
// classifiers.
type Delivery struct {
	Physical              bool `json:"physical"`
	PhysicalSingle        bool `json:"physical_single"`
	PhysicalShared        bool `json:"physical_shared"`
	PhysicalSharedPrimary bool `json:"physical_shared_primary"`

	Digital            bool `json:"digital"`
	DigitalSingle      bool `json:"digital_single"`
	DigitalShared      bool `json:"digital_shared"`
	MailingListPrimary bool `json:"mailing_list_primary"`
	FamilyMember       bool `json:"family_member"`
	// FamilyOrdinal is the 1-based birth-date rank among confirmed family
	// members of the same email; 0 when not applicable.
	FamilyOrdinal int `json:"family_ordinal"`
}

// PhysicalState enumerates the mutually exclusive physical outcomes.
type PhysicalState string

const (
	PhysicalIneligible PhysicalState = "ineligible"
	PhysicalSingle     PhysicalState = "single"
	PhysicalShared     PhysicalState = "shared"
)

// DigitalState enumerates the terminal digital outcomes of one record.
type DigitalState string

const (
	DigitalIneligible     DigitalState = "ineligible"
	DigitalSingle         DigitalState = "single"
	DigitalRepresentative DigitalState = "representative"
	DigitalFamilyMember   DigitalState = "family_member"
	DigitalFamilyExcluded DigitalState = "family_excluded"
)

// PhysicalState derives the physical outcome from the flags.
func (d Delivery) PhysicalState() PhysicalState {
	switch {
	case d.PhysicalSingle:
		return PhysicalSingle
	case d.PhysicalShared:
		return PhysicalShared
	default:
		return PhysicalIneligible
	}
}

// DigitalState derives the digital outcome from the flags.
func (d Delivery) DigitalState() DigitalState {
	switch {
	case !d.Digital:
		return DigitalIneligible
	case d.DigitalSingle:
		return DigitalSingle
	case d.MailingListPrimary:
		return DigitalRepresentative
	case d.FamilyMember:
		return DigitalFamilyMember
	default:
		return DigitalFamilyExcluded
	}
}
