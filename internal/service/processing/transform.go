package processing

import (
	"io"

	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/roster"
	"github.com/mediapoint/roster/internal/workbook"
)

// NewPipeline builds the classification pipeline for the configured market.
func NewPipeline(cfg config.RosterConfig) *roster.Pipeline {
	return roster.New(roster.Options{
		HomeCountry: cfg.HomeCountry,
		Affirmative: cfg.Affirmative,
		CardTier:    cfg.CardTier,
		FamilySlots: cfg.FamilySlots,
	})
}

// Transform reads a roster workbook from r, classifies it and writes the
// output workbook to w. Nothing is written when any step fails before the
// workbook is rendered.
func Transform(p *roster.Pipeline, r io.Reader, w io.Writer) (*roster.Result, error) {
	tbl, err := workbook.Read(r)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(tbl)
	if err != nil {
		return nil, err
	}
	if err := workbook.Write(w, res.Views); err != nil {
		return nil, err
	}
	return res, nil
}
