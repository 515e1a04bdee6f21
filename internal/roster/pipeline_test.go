package roster

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapoint/roster/internal/domain"
)

// randomRoster builds n rows drawn from a small pool of addresses, emails
// and contracts so that every kind of group occurs.
func randomRoster(seed int64, n int) Table {
	rng := rand.New(rand.NewSource(seed))
	pick := func(opts ...string) string { return opts[rng.Intn(len(opts))] }

	rows := make([]testRow, n)
	for i := range rows {
		r := subscriber(i + 1)
		addr := rng.Intn(n/3 + 1)
		r.postcode = fmt.Sprintf("%04dXY", 2000+addr)
		r.house = fmt.Sprint(addr % 7)
		r.addition = pick("", "", "a")
		r.email = fmt.Sprintf("huis%d@example.nl", rng.Intn(n/3+1))
		r.contract = fmt.Sprint(rng.Intn(n/4 + 1))
		r.birth = fmt.Sprintf("%02d-%02d-%d", 1+rng.Intn(28), 1+rng.Intn(12), 1930+rng.Intn(80))
		r.physical = pick("Ja", "Ja", "Nee", "")
		r.digital = pick("Ja", "Ja", "Nee")
		r.priority = pick("0", "0", "0", "1", "2")
		rows[i] = r
	}
	return testTable(rows...)
}

func TestPipeline_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			res, err := New(DefaultOptions()).Run(randomRoster(seed, 60))
			require.NoError(t, err)
			checkInvariants(t, res.Records)

			seen := map[string]bool{}
			for _, row := range viewByName(t, res.Views, SheetMailingList).Rows {
				email := row[0].(string)
				assert.False(t, seen[email], "duplicate mailing-list email %s", email)
				seen[email] = true
			}
		})
	}
}

func checkInvariants(t *testing.T, records []domain.Subscriber) {
	t.Helper()

	contracts := map[string][]domain.Subscriber{}
	emails := map[string][]domain.Subscriber{}

	for _, r := range records {
		d := r.Delivery
		assert.False(t, d.PhysicalSingle && d.PhysicalShared, "record %d", r.Row)
		assert.Equal(t, d.Physical, d.PhysicalSingle || d.PhysicalShared, "record %d", r.Row)
		assert.False(t, d.DigitalSingle && d.DigitalShared, "record %d", r.Row)
		assert.Equal(t, d.Digital, d.DigitalSingle || d.DigitalShared, "record %d", r.Row)
		if d.DigitalSingle {
			assert.True(t, d.MailingListPrimary, "record %d", r.Row)
		}
		if d.PhysicalShared {
			contracts[r.ContractNumber] = append(contracts[r.ContractNumber], r)
		}
		if d.DigitalShared {
			emails[r.Email] = append(emails[r.Email], r)
		}
	}

	for key, members := range contracts {
		primaries, anyPriority, allNormal := 0, false, true
		for _, m := range members {
			if m.Delivery.PhysicalSharedPrimary {
				primaries++
			}
			anyPriority = anyPriority || m.Priority == 1
			allNormal = allNormal && m.Priority == 0
		}
		assert.LessOrEqual(t, primaries, 1, "contract %s", key)
		if anyPriority || allNormal {
			assert.Equal(t, 1, primaries, "contract %s", key)
		}
	}

	for key, members := range emails {
		primaries := 0
		var family []domain.Subscriber
		for _, m := range members {
			if m.Delivery.MailingListPrimary {
				primaries++
				assert.Zero(t, m.Delivery.FamilyOrdinal)
			}
			if m.Delivery.FamilyMember {
				family = append(family, m)
			} else {
				assert.Zero(t, m.Delivery.FamilyOrdinal)
			}
		}
		assert.Equal(t, 1, primaries, "email %s", key)

		sort.Slice(family, func(a, b int) bool {
			return family[a].Delivery.FamilyOrdinal < family[b].Delivery.FamilyOrdinal
		})
		for i, m := range family {
			assert.Equal(t, i+1, m.Delivery.FamilyOrdinal, "email %s", key)
			if i > 0 {
				assert.False(t, m.BirthDate.Before(family[i-1].BirthDate), "email %s", key)
			}
		}
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	tbl := randomRoster(42, 80)
	p := New(DefaultOptions())

	first, err := p.Run(tbl)
	require.NoError(t, err)
	second, err := p.Run(tbl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_ClassifiersAreRepeatable(t *testing.T) {
	res, err := New(DefaultOptions()).Run(randomRoster(7, 40))
	require.NoError(t, err)

	again, err := ClassifyPhysical(res.Records, DefaultOptions())
	require.NoError(t, err)
	again, err = ClassifyDigital(again, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, res.Records, again)
}

func TestPipeline_SingleMemberGroups(t *testing.T) {
	res, err := New(DefaultOptions()).Run(testTable(subscriber(1), subscriber(2)))
	require.NoError(t, err)

	for _, r := range res.Records {
		assert.True(t, r.Delivery.PhysicalSingle)
		assert.False(t, r.Delivery.PhysicalSharedPrimary)
		assert.True(t, r.Delivery.DigitalSingle)
		assert.True(t, r.Delivery.MailingListPrimary)
	}
	assert.Equal(t, 2, res.Summary.Records)
	assert.Equal(t, 2, res.Summary.Count(SheetMailingList))
	assert.Equal(t, 0, res.Summary.Count(SheetPhysicalShared))
	assert.Equal(t, 0, res.Summary.Count("Onbekend"))
}

func TestPipeline_ErrorsAbortRun(t *testing.T) {
	bad := subscriber(2)
	bad.birth = "morgen"

	res, err := New(DefaultOptions()).Run(testTable(subscriber(1), bad))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrDateParse)
	assert.True(t, IsInputError(err))

	_, err = New(DefaultOptions()).Run(Table{Header: []string{"email"}, Rows: [][]string{{"a@b.nl"}}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestPipeline_Check(t *testing.T) {
	n, err := New(Options{}).Check(testTable(subscriber(1), subscriber(2), subscriber(3)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = New(Options{}).Check(Table{Header: testHeader})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNew_Defaults(t *testing.T) {
	opts := New(Options{Affirmative: "Yes"}).Options()
	assert.Equal(t, "Yes", opts.Affirmative)
	assert.Equal(t, "Nederland", opts.HomeCountry)
	assert.Equal(t, 2, opts.CardTier)
	assert.Equal(t, 4, opts.FamilySlots)
}
