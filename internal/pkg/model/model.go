package model

import (
	"strconv"
)

// AllSites is the sentinel [Site] selecting every launch site.
const AllSites Site = "ALL"

// Site identifies a launch site, or the [AllSites] sentinel when used as a selection.
type Site string

// String returns the site name as a plain string.
func (s Site) String() string {
	return string(s)
}

// IsAll reports whether the selection is the [AllSites] sentinel.
//
// An empty selection is considered as [AllSites].
func (s Site) IsAll() bool {
	return s == AllSites || s == ""
}

// OutcomeClass is the binary outcome of a launch: 1 for success, 0 for failure.
type OutcomeClass int

// Known outcome classes.
const (
	OutcomeFailure OutcomeClass = 0
	OutcomeSuccess OutcomeClass = 1
)

// IsValid reports whether the class is one of the two known outcomes.
func (c OutcomeClass) IsValid() bool {
	return c == OutcomeFailure || c == OutcomeSuccess
}

// String renders the class the way it is labeled on charts, i.e. "0" or "1".
func (c OutcomeClass) String() string {
	return strconv.Itoa(int(c))
}

// LaunchRecord is one launch attempt.
//
// Records are immutable once loaded.
type LaunchRecord struct {
	FlightNumber    int          `json:"flight_number,omitempty"`
	Site            Site         `json:"launch_site"`
	PayloadMass     float64      `json:"payload_mass_kg"`
	Class           OutcomeClass `json:"class"`
	BoosterVersion  string       `json:"booster_version,omitempty"`
	BoosterCategory string       `json:"booster_version_category"`
}

// PayloadRange is an inclusive [Low, High] interval of payload masses, in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// NewPayloadRange builds a [PayloadRange], swapping bounds when given in reverse order.
func NewPayloadRange(low, high float64) PayloadRange {
	if low > high {
		low, high = high, low
	}

	return PayloadRange{Low: low, High: high}
}

// Contains reports whether the payload mass lies within the inclusive range.
func (r PayloadRange) Contains(mass float64) bool {
	return mass >= r.Low && mass <= r.High
}

// Normalized returns the range with its bounds in ascending order.
func (r PayloadRange) Normalized() PayloadRange {
	return NewPayloadRange(r.Low, r.High)
}

// SiteCount is an aggregated value for a launch site.
type SiteCount struct {
	Site  Site
	Value int
}

// ClassCount is the number of launches with a given outcome class.
type ClassCount struct {
	Class OutcomeClass
	Count int
}
