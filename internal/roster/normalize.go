package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mediapoint/roster/internal/domain"
)

// Table is a sheet of text cells: one header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// floatInteger matches "1234.0", the form numeric cells take after a
// round-trip through a float column.
var floatInteger = regexp.MustCompile(`^-?\d+\.0+$`)

// Normalize maps the header, fills absent cells and returns one record per
// data row. Email is lower-cased, the home country is blanked, and numeric
// identifiers lose any float suffix.
func Normalize(t Table, opts Options) ([]domain.Subscriber, *ColumnMapping, error) {
	if strings.TrimSpace(strings.Join(t.Header, "")) == "" {
		return nil, nil, fmt.Errorf("%w: no header row", ErrEmptyInput)
	}
	mapping, err := MapColumns(t.Header)
	if err != nil {
		return nil, nil, err
	}
	if len(t.Rows) == 0 {
		return nil, nil, ErrEmptyInput
	}

	lower := cases.Lower(language.Und)
	records := make([]domain.Subscriber, 0, len(t.Rows))

	for i, row := range t.Rows {
		fields := make(map[string]string, len(mapping.Names))
		for col, name := range mapping.Names {
			var val string
			if col < len(row) {
				val = strings.TrimSpace(row[col])
			}
			fields[name] = val
		}
		get := func(c Column) string { return fields[string(c)] }

		for c := range numericColumns {
			fields[string(c)] = normalizeNumber(get(c))
		}
		fields[string(ColEmail)] = lower.String(get(ColEmail))
		if strings.EqualFold(get(ColCountry), strings.TrimSpace(opts.HomeCountry)) {
			fields[string(ColCountry)] = ""
		}

		priority := 0
		if raw := get(ColPriority); raw != "" {
			priority, err = strconv.Atoi(raw)
			if err != nil {
				return nil, nil, &RowError{Row: i + 1, Column: string(ColPriority), Value: raw, Err: ErrMalformedInput}
			}
		}
		fields[string(ColPriority)] = strconv.Itoa(priority)

		records = append(records, domain.Subscriber{
			Row:                 i + 1,
			FirstName:           get(ColFirstName),
			Infix:               get(ColInfix),
			LastName:            get(ColLastName),
			Email:               get(ColEmail),
			SubscriptionNumber:  get(ColSubscriptionNumber),
			ContractNumber:      get(ColContractNumber),
			Street:              get(ColStreet),
			HouseNumber:         get(ColHouseNumber),
			HouseNumberAddition: get(ColHouseNumberAddition),
			PostalCode:          get(ColPostalCode),
			City:                get(ColCity),
			Country:             get(ColCountry),
			BirthDateRaw:        get(ColBirthDate),
			StartDateRaw:        get(ColStartDate),
			Priority:            priority,
			WantsPhysical:       get(ColWantsPhysical),
			WantsDigital:        get(ColWantsDigital),
			Fields:              fields,
		})
	}
	return records, mapping, nil
}

func normalizeNumber(s string) string {
	if floatInteger.MatchString(s) {
		return s[:strings.IndexByte(s, '.')]
	}
	return s
}
