package dataset

import (
	"github.com/fredbi/launchdash/internal/pkg/config"
)

// Option configures how a [Dataset] is loaded.
type Option func(*options)

type options struct {
	columns config.Columns
}

// DefaultColumns are the header names of the launch records file when none are configured.
var DefaultColumns = config.Columns{
	Site:           "Launch Site",
	Payload:        "Payload Mass (kg)",
	Class:          "class",
	Booster:        "Booster Version Category",
	BoosterVersion: "Booster Version",
	FlightNumber:   "Flight Number",
}

// WithColumns overrides the header names used to locate fields in the input file.
//
// Empty names retain their default.
func WithColumns(columns config.Columns) Option {
	return func(o *options) {
		if columns.Site != "" {
			o.columns.Site = columns.Site
		}
		if columns.Payload != "" {
			o.columns.Payload = columns.Payload
		}
		if columns.Class != "" {
			o.columns.Class = columns.Class
		}
		if columns.Booster != "" {
			o.columns.Booster = columns.Booster
		}
		if columns.BoosterVersion != "" {
			o.columns.BoosterVersion = columns.BoosterVersion
		}
		if columns.FlightNumber != "" {
			o.columns.FlightNumber = columns.FlightNumber
		}
	}
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		columns: DefaultColumns,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}
