package domain

import "time"

// Subscriber is one row of a roster extract. It has no natural key; Row is
// its 1-based position among the data rows of the source sheet.
type Subscriber struct {
	Row int `json:"row"`

	// Source identity and contact fields, normalized.
	FirstName          string `json:"first_name"`
	Infix              string `json:"infix"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	SubscriptionNumber string `json:"subscription_number"`
	ContractNumber     string `json:"contract_number"`

	// Address as delivered. Country is empty for the home market.
	Street              string `json:"street"`
	HouseNumber         string `json:"house_number"`
	HouseNumberAddition string `json:"house_number_addition"`
	PostalCode          string `json:"postal_code"`
	City                string `json:"city"`
	Country             string `json:"country"`

	// Raw date cells; parsed into BirthDate/StartDate by the deriver.
	BirthDateRaw string `json:"-"`
	StartDateRaw string `json:"-"`

	// Priority is the "toorts" indicator: 1 elevates the record when a
	// representative is chosen, 0 is the normal case.
	Priority      int    `json:"priority"`
	WantsPhysical string `json:"wants_physical"`
	WantsDigital  string `json:"wants_digital"`

	// Derived display fields and grouping keys.
	FullName       string    `json:"full_name"`
	Name           string    `json:"name"`
	FullStreet     string    `json:"full_street"`
	FullCity       string    `json:"full_city"`
	AddressKey     string    `json:"address_key"`
	HouseholdLabel string    `json:"household_label"`
	BirthDate      time.Time `json:"birth_date"`
	StartDate      time.Time `json:"start_date"`

	Delivery Delivery `json:"delivery"`

	// Fields holds every source column (lower-cased name -> normalized text)
	// so the full row can be written back out.
	Fields map[string]string `json:"-"`
}

// HasBirthDate reports whether a birth date was present in the source.
func (s Subscriber) HasBirthDate() bool { return !s.BirthDate.IsZero() }

// Clone returns a copy that shares no mutable state with s.
func (s Subscriber) Clone() Subscriber {
	out := s
	if s.Fields != nil {
		out.Fields = make(map[string]string, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
