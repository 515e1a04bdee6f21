package roster

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mediapoint/roster/internal/domain"
)

// DateLayout is how dates are rendered in every output sheet.
const DateLayout = "02-01-2006"

// excelEpoch is day zero of the 1900 date system for serials after the
// fictitious 29 February 1900. Earlier serials count from one day later.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// phantomLeapDay is the serial of 29-02-1900, a date that never existed.
const phantomLeapDay = 60

// maxExcelSerial is 31-12-9999, the last date a workbook can hold.
const maxExcelSerial = 2958465

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2/1/2006",
	"2.1.2006",
}

// Derive adds display fields, grouping keys and parsed dates.
func Derive(records []domain.Subscriber) ([]domain.Subscriber, error) {
	out := cloneAll(records)
	for i := range out {
		s := &out[i]

		s.FullName = joinNonEmpty(s.FirstName, s.Infix, s.LastName)
		s.Name = joinNonEmpty(s.Infix, s.LastName)
		s.FullStreet = addressLine(s.Street, s.HouseNumber, s.HouseNumberAddition)
		s.FullCity = s.PostalCode + "  " + s.City
		s.AddressKey = addressLine(s.PostalCode, s.HouseNumber, s.HouseNumberAddition)
		s.HouseholdLabel = s.FullName + " " + s.SubscriptionNumber

		var err error
		if s.BirthDate, err = parseDate(s.BirthDateRaw); err != nil {
			return nil, &RowError{Row: s.Row, Column: string(ColBirthDate), Value: s.BirthDateRaw, Err: err}
		}
		if s.StartDate, err = parseDate(s.StartDateRaw); err != nil {
			return nil, &RowError{Row: s.Row, Column: string(ColStartDate), Value: s.StartDateRaw, Err: err}
		}
		s.Fields[string(ColBirthDate)] = FormatDate(s.BirthDate)
		s.Fields[string(ColStartDate)] = FormatDate(s.StartDate)
	}
	return out, nil
}

// FormatDate renders t as DD-MM-YYYY, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// parseDate accepts workbook serial numbers, ISO dates and day-first dates.
// An empty cell is an absent date, not an error.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < 1 || serial >= maxExcelSerial+1 {
			return time.Time{}, ErrDateParse
		}
		day := int(math.Floor(serial))
		if day == phantomLeapDay {
			return time.Time{}, ErrDateParse
		}
		if day < phantomLeapDay {
			day++
		}
		return excelEpoch.AddDate(0, 0, day), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrDateParse
}

// addressLine renders "<first> <house>" and appends " <addition>" when the
// addition is set. The separator after first is always present, so an empty
// house number never lets the addition take its place.
func addressLine(first, house, addition string) string {
	line := strings.TrimSpace(first) + " " + strings.TrimSpace(house)
	if addition = strings.TrimSpace(addition); addition != "" {
		line += " " + addition
	}
	return line
}

// joinNonEmpty joins the trimmed non-empty parts with single spaces.
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func cloneAll(records []domain.Subscriber) []domain.Subscriber {
	out := make([]domain.Subscriber, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
