package roster

import (
	"fmt"

	"github.com/mediapoint/roster/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetMain                  = "Main"
	SheetPhysical              = "Fysiek"
	SheetPhysicalSingle        = "Fysiek 1p"
	SheetPhysicalShared        = "Fysiek 2p+"
	SheetPhysicalSharedPrimary = "Fysiek 2p+ brieven"
	SheetDigital               = "Digitaal"
	SheetDigitalSingle         = "Digitaal 1p"
	SheetDigitalShared         = "Digitaal 2p+"
	SheetMailingList           = "MailChimp"
)

// HouseholdKeyColumn is appended to the Main sheet after the source columns.
const HouseholdKeyColumn = "postcode huisnummer toevoeging"

// View is one output sheet: a header and the rows under it.
type View struct {
	Name    string
	Columns []string
	Rows    [][]any
}

var physicalColumns = []string{
	"Naam compleet", "Geboortedatum", "Straat compleet", "Plaats compleet",
	"Land", "Vanaf", "Abonneenummer", "toorts",
}

var digitalColumns = []string{
	"cardNumber", "name", "birthday", "email", "dynamicField", "card",
}

var mailingListColumns = []string{
	"Email Address", "First", "Name", "Lidmaatschapsnummer",
}

var mainFlagColumns = []string{
	"fysiek", "fysiek 1p", "fysiek 2p+", "fysiek 2p+ brieven",
	"digitaal", "digitaal 1p", "digitaal 2p+", "digitaal 2p+ family",
	"fam_number", "MailChimp", "name", "plaats compleet", "straat compleet",
	"naam compleet", "fam", "card",
}

// Project slices classified records into the Main sheet followed by the
// audience views. Row order follows record order in every view.
func Project(records []domain.Subscriber, mapping *ColumnMapping, opts Options) []View {
	physical := func(pred func(domain.Delivery) bool, name string) View {
		v := View{Name: name, Columns: physicalColumns}
		for _, s := range records {
			if pred(s.Delivery) {
				v.Rows = append(v.Rows, physicalRow(s))
			}
		}
		return v
	}
	digital := func(pred func(domain.Delivery) bool, name string) View {
		v := View{Name: name, Columns: digitalColumns}
		for _, s := range records {
			if pred(s.Delivery) {
				v.Rows = append(v.Rows, digitalRow(s, opts.CardTier))
			}
		}
		return v
	}

	return []View{
		mainView(records, mapping, opts),
		physical(func(d domain.Delivery) bool { return d.Physical }, SheetPhysical),
		physical(func(d domain.Delivery) bool { return d.PhysicalSingle }, SheetPhysicalSingle),
		physical(func(d domain.Delivery) bool { return d.PhysicalShared }, SheetPhysicalShared),
		physical(func(d domain.Delivery) bool { return d.PhysicalSharedPrimary }, SheetPhysicalSharedPrimary),
		digital(func(d domain.Delivery) bool { return d.Digital }, SheetDigital),
		digital(func(d domain.Delivery) bool { return d.DigitalSingle }, SheetDigitalSingle),
		familyView(records, opts),
		mailingListView(records),
	}
}

func physicalRow(s domain.Subscriber) []any {
	return []any{
		s.FullName, FormatDate(s.BirthDate), s.FullStreet, s.FullCity,
		s.Country, FormatDate(s.StartDate), s.SubscriptionNumber, s.Priority,
	}
}

func digitalRow(s domain.Subscriber, cardTier int) []any {
	return []any{
		s.SubscriptionNumber, s.FullName, FormatDate(s.BirthDate), s.Email,
		FormatDate(s.StartDate), cardTier,
	}
}

// familyView lists shared digital records that are not family members, with
// the household labels of their email's family in fam1..famN by ordinal.
// Ordinals beyond the slot count are dropped.
func familyView(records []domain.Subscriber, opts Options) View {
	cols := append([]string(nil), digitalColumns...)
	for n := 1; n <= opts.FamilySlots; n++ {
		cols = append(cols, fmt.Sprintf("fam%d", n))
	}

	labels := make(map[string][]string)
	for _, s := range records {
		ord := s.Delivery.FamilyOrdinal
		if !s.Delivery.FamilyMember || ord < 1 || ord > opts.FamilySlots {
			continue
		}
		slots, ok := labels[s.Email]
		if !ok {
			slots = make([]string, opts.FamilySlots)
			labels[s.Email] = slots
		}
		slots[ord-1] = s.HouseholdLabel
	}

	v := View{Name: SheetDigitalShared, Columns: cols}
	for _, s := range records {
		if !s.Delivery.DigitalShared || s.Delivery.FamilyMember {
			continue
		}
		row := digitalRow(s, opts.CardTier)
		slots := labels[s.Email]
		for n := 0; n < opts.FamilySlots; n++ {
			if slots == nil {
				row = append(row, "")
			} else {
				row = append(row, slots[n])
			}
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// mailingListView keeps the first row per email address.
func mailingListView(records []domain.Subscriber) View {
	v := View{Name: SheetMailingList, Columns: mailingListColumns}
	seen := make(map[string]bool)
	for _, s := range records {
		if !s.Delivery.MailingListPrimary || seen[s.Email] {
			continue
		}
		seen[s.Email] = true
		v.Rows = append(v.Rows, []any{s.Email, s.FirstName, s.Name, s.SubscriptionNumber})
	}
	return v
}

// mainView carries every flag and derived field, then the source row, then
// the household key.
func mainView(records []domain.Subscriber, mapping *ColumnMapping, opts Options) View {
	cols := make([]string, 0, len(mainFlagColumns)+len(mapping.Names)+1)
	cols = append(cols, mainFlagColumns...)
	cols = append(cols, mapping.Names...)
	cols = append(cols, HouseholdKeyColumn)

	v := View{Name: SheetMain, Columns: cols, Rows: make([][]any, 0, len(records))}
	for _, s := range records {
		d := s.Delivery
		row := make([]any, 0, len(cols))
		row = append(row,
			d.Physical, d.PhysicalSingle, d.PhysicalShared, d.PhysicalSharedPrimary,
			d.Digital, d.DigitalSingle, d.DigitalShared, d.FamilyMember,
			d.FamilyOrdinal, d.MailingListPrimary, s.Name, s.FullCity, s.FullStreet,
			s.FullName, s.HouseholdLabel, opts.CardTier,
		)
		for _, name := range mapping.Names {
			row = append(row, s.Fields[name])
		}
		row = append(row, s.AddressKey)
		v.Rows = append(v.Rows, row)
	}
	return v
}
