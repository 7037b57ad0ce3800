package dataset

import (
	"github.com/fredbi/launchdash/internal/pkg/model"
)

// Report allows to inspect the contents of a loaded dataset.
type Report struct {
	File              string        `json:"file"`
	Records           int           `json:"records"`
	Payload           MinMaxRange   `json:"payload_mass_kg"`
	Successes         int           `json:"successes"`
	Sites             []SiteSummary `json:"launch_sites"`
	BoosterCategories []string      `json:"booster_version_categories"`
}

// SiteSummary describes the launches from one site.
type SiteSummary struct {
	Site      model.Site  `json:"launch_site"`
	Launches  int         `json:"launches"`
	Successes int         `json:"successes"`
	Payload   MinMaxRange `json:"payload_mass_kg"`
}

// MinMaxRange is the observed range of payload masses.
type MinMaxRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r *MinMaxRange) observe(value float64, first bool) {
	if first || value < r.Min {
		r.Min = value
	}
	if first || value > r.Max {
		r.Max = value
	}
}

// Report produces a [Report], which allows for closer inspection of the content of the dataset.
func (ds *Dataset) Report() Report {
	r := Report{
		File:              ds.File,
		Records:           len(ds.records),
		Payload:           MinMaxRange{Min: ds.minPayload, Max: ds.maxPayload},
		Sites:             make([]SiteSummary, 0, len(ds.sites)),
		BoosterCategories: ds.BoosterCategories(),
	}
	index := make(map[model.Site]int, len(ds.sites))

	for _, site := range ds.sites {
		index[site] = len(r.Sites)
		r.Sites = append(r.Sites, SiteSummary{Site: site})
	}

	for _, record := range ds.records {
		summary := &r.Sites[index[record.Site]]
		summary.Payload.observe(record.PayloadMass, summary.Launches == 0)
		summary.Launches++

		if record.Class == model.OutcomeSuccess {
			summary.Successes++
			r.Successes++
		}
	}

	return r
}
