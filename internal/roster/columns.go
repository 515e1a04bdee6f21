package roster

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column is a normalized (lower-cased, trimmed) source column name.
type Column string

const (
	ColCountry             Column = "land"
	ColEmail               Column = "email"
	ColPostalCode          Column = "postcode"
	ColStreet              Column = "straat"
	ColHouseNumber         Column = "huisnummer"
	ColHouseNumberAddition Column = "toevoeging"
	ColCity                Column = "plaats"
	ColInfix               Column = "tussenvoegsel"
	ColLastName            Column = "naam"
	ColFirstName           Column = "voornaam"
	ColSubscriptionNumber  Column = "abonneenummer"
	ColContractNumber      Column = "contractnummer"
	ColBirthDate           Column = "geboortedatum"
	ColStartDate           Column = "vanaf"
	ColWantsPhysical       Column = "pas fysiek"
	ColWantsDigital        Column = "pas digitaal"
	ColPriority            Column = "toorts"
)

// RequiredColumns lists every column the pipeline reads, in the order they
// are reported when missing.
var RequiredColumns = []Column{
	ColCountry, ColEmail, ColPostalCode, ColStreet, ColHouseNumber,
	ColHouseNumberAddition, ColCity, ColInfix, ColLastName, ColFirstName,
	ColSubscriptionNumber, ColContractNumber, ColBirthDate, ColStartDate,
	ColWantsPhysical, ColWantsDigital, ColPriority,
}

// numericColumns are cells a spreadsheet may hand over as floats.
var numericColumns = map[Column]bool{
	ColPostalCode:         true,
	ColHouseNumber:        true,
	ColSubscriptionNumber: true,
	ColContractNumber:     true,
	ColPriority:           true,
}

// ColumnMapping is the result of matching a header row against the known
// columns.
type ColumnMapping struct {
	// Names holds the normalized header, in source order. Repeated names
	// get a ".1", ".2" suffix so every column stays addressable.
	Names []string
	Index map[Column]int
}

// MapColumns normalizes header names and checks that every required column
// is present.
func MapColumns(header []string) (*ColumnMapping, error) {
	lower := cases.Lower(language.Und)
	m := &ColumnMapping{
		Names: make([]string, len(header)),
		Index: make(map[Column]int, len(RequiredColumns)),
	}
	seen := make(map[string]int, len(header))

	for i, raw := range header {
		name := lower.String(strings.TrimSpace(raw))
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
			if _, ok := m.Index[Column(name)]; !ok {
				m.Index[Column(name)] = i
			}
		}
		m.Names[i] = name
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := m.Index[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformedInput, strings.Join(missing, ", "))
	}
	return m, nil
}
