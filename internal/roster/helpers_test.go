package roster

import (
	"fmt"
	"strconv"

	"github.com/mediapoint/roster/internal/domain"
)

var testHeader = []string{
	"Land", "Email", "Postcode", "Straat", "Huisnummer", "Toevoeging", "Plaats",
	"Tussenvoegsel", "Naam", "Voornaam", "Abonneenummer", "Contractnummer",
	"Geboortedatum", "Vanaf", "Pas fysiek", "Pas digitaal", "Toorts",
}

// testRow is one roster line in source column order.
type testRow struct {
	country, email, postcode, street, house, addition, city string
	infix, last, first, sub, contract, birth, start         string
	physical, digital, priority                             string
}

func (r testRow) cells() []string {
	return []string{
		r.country, r.email, r.postcode, r.street, r.house, r.addition, r.city,
		r.infix, r.last, r.first, r.sub, r.contract, r.birth, r.start,
		r.physical, r.digital, r.priority,
	}
}

// subscriber returns a row with a unique address, email and contract for n.
func subscriber(n int) testRow {
	return testRow{
		country:  "Nederland",
		email:    fmt.Sprintf("lid%d@example.nl", n),
		postcode: fmt.Sprintf("%04dAB", 1000+n),
		street:   "Dorpsstraat",
		house:    strconv.Itoa(n),
		city:     "Utrecht",
		last:     "Jansen",
		first:    fmt.Sprintf("Lid%d", n),
		sub:      strconv.Itoa(5000 + n),
		contract: strconv.Itoa(9000 + n),
		birth:    "01-01-1980",
		start:    "01-01-2020",
		physical: "Ja",
		digital:  "Ja",
		priority: "0",
	}
}

func testTable(rows ...testRow) Table {
	t := Table{Header: testHeader}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.cells())
	}
	return t
}

// prepared runs normalize and derive with default options.
func prepared(rows ...testRow) ([]domain.Subscriber, error) {
	records, _, err := Normalize(testTable(rows...), DefaultOptions())
	if err != nil {
		return nil, err
	}
	return Derive(records)
}
