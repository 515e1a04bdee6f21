package roster

import "github.com/mediapoint/roster/internal/domain"

// Options tune the market-specific parts of the pipeline.
type Options struct {
	// HomeCountry is blanked from the country column.
	HomeCountry string `yaml:"home_country"`
	// Affirmative is the literal marker in the "pas fysiek" and
	// "pas digitaal" columns that opts a subscriber in.
	Affirmative string `yaml:"affirmative"`
	CardTier    int    `yaml:"card_tier"`
	FamilySlots int    `yaml:"family_slots"`
}

// DefaultOptions returns the options for the Dutch roster extract.
func DefaultOptions() Options {
	return Options{
		HomeCountry: "Nederland",
		Affirmative: "Ja",
		CardTier:    2,
		FamilySlots: 4,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.HomeCountry == "" {
		o.HomeCountry = def.HomeCountry
	}
	if o.Affirmative == "" {
		o.Affirmative = def.Affirmative
	}
	if o.CardTier == 0 {
		o.CardTier = def.CardTier
	}
	if o.FamilySlots <= 0 {
		o.FamilySlots = def.FamilySlots
	}
	return o
}

// Result is the outcome of one pipeline run.
type Result struct {
	Records []domain.Subscriber
	Columns *ColumnMapping
	Views   []View
	Summary Summary
}

// Summary counts records and rows per view.
type Summary struct {
	Records int         `json:"records"`
	Views   []ViewCount `json:"views"`
}

// ViewCount is the row count of one view.
type ViewCount struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Pipeline runs the stages in order with one set of options.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline. Zero option fields take their defaults.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }

// Run normalizes, derives, classifies and projects t. Any error aborts the
// whole run; there is no partial result.
func (p *Pipeline) Run(t Table) (*Result, error) {
	records, mapping, err := p.prepare(t)
	if err != nil {
		return nil, err
	}
	if records, err = ClassifyPhysical(records, p.opts); err != nil {
		return nil, err
	}
	if records, err = ClassifyDigital(records, p.opts); err != nil {
		return nil, err
	}

	views := Project(records, mapping, p.opts)
	return &Result{
		Records: records,
		Columns: mapping,
		Views:   views,
		Summary: summarize(len(records), views),
	}, nil
}

// Check runs the normalize and derive stages only and returns the record
// count.
func (p *Pipeline) Check(t Table) (int, error) {
	records, _, err := p.prepare(t)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Pipeline) prepare(t Table) ([]domain.Subscriber, *ColumnMapping, error) {
	records, mapping, err := Normalize(t, p.opts)
	if err != nil {
		return nil, nil, err
	}
	records, err = Derive(records)
	if err != nil {
		return nil, nil, err
	}
	return records, mapping, nil
}

func summarize(records int, views []View) Summary {
	s := Summary{Records: records, Views: make([]ViewCount, 0, len(views))}
	for _, v := range views {
		s.Views = append(s.Views, ViewCount{Name: v.Name, Rows: len(v.Rows)})
	}
	return s
}

// Count returns the row count of the named view, or 0.
func (s Summary) Count(name string) int {
	for _, v := range s.Views {
		if v.Name == name {
			return v.Rows
		}
	}
	return 0
}
