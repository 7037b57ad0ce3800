// Package dataset loads the launch records table and exposes read-only views over it.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/model"
	"github.com/gabriel-vasile/mimetype"
)

// ErrMalformed is returned when the input file cannot be interpreted as a launch records table.
var ErrMalformed = errors.New("malformed launch records")

// Dataset holds the launch records loaded at startup.
//
// A [Dataset] is never mutated after loading: every view returns a freshly allocated slice.
type Dataset struct {
	options

	File string

	records    []model.LaunchRecord
	sites      []model.Site
	boosters   []string
	minPayload float64
	maxPayload float64
	l          *slog.Logger
}

// Load a launch records file from the local file system.
func Load(file string, opts ...Option) (*Dataset, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("input file %q: %w", file, err)
	}

	ds, err := Parse(bytes.NewReader(content), opts...)
	if err != nil {
		return nil, fmt.Errorf("input file %q: %w", file, err)
	}

	ds.File = file
	ds.l.Info("launch records loaded",
		slog.String("file", file),
		slog.Int("records", len(ds.records)),
		slog.Int("sites", len(ds.sites)),
	)

	return ds, nil
}

// Parse launch records from a CSV stream with a header row.
func Parse(r io.Reader, opts ...Option) (*Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if mime := mimetype.Detect(content); !isText(mime) {
		return nil, fmt.Errorf("%w: expected a CSV text file, got %s", ErrMalformed, mime.String())
	}

	ds := &Dataset{
		options: optionsWithDefaults(opts),
		l:       slog.Default().With(slog.String("module", "dataset")),
	}

	if err := ds.parseCSV(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))); err != nil {
		return nil, err
	}

	return ds, nil
}

func isText(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}

	return false
}

type columnIndex struct {
	site, payload, class, booster int
	boosterVersion, flightNumber  int
}

func (ds *Dataset) parseCSV(content []byte) error {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: missing header row", ErrMalformed)
		}

		return fmt.Errorf("%w: reading header: %w", ErrMalformed, err)
	}

	idx, err := ds.indexColumns(header)
	if err != nil {
		return err
	}

	seenSites := make(map[model.Site]struct{})
	seenBoosters := make(map[string]struct{})

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		record, err := ds.parseRow(row, idx)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}

		if len(ds.records) == 0 || record.PayloadMass < ds.minPayload {
			ds.minPayload = record.PayloadMass
		}
		if len(ds.records) == 0 || record.PayloadMass > ds.maxPayload {
			ds.maxPayload = record.PayloadMass
		}

		if _, seen := seenSites[record.Site]; !seen {
			seenSites[record.Site] = struct{}{}
			ds.sites = append(ds.sites, record.Site)
		}

		if _, seen := seenBoosters[record.BoosterCategory]; !seen {
			seenBoosters[record.BoosterCategory] = struct{}{}
			ds.boosters = append(ds.boosters, record.BoosterCategory)
		}

		ds.records = append(ds.records, record)
	}

	if len(ds.records) == 0 {
		return fmt.Errorf("%w: no launch record found", ErrMalformed)
	}

	return nil
}

func (ds *Dataset) indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	lookup := func(name string, required bool) (int, error) {
		pos, ok := positions[name]
		if !ok && required {
			return -1, fmt.Errorf("%w: required column %q not found in header %q", ErrMalformed, name, header)
		}
		if !ok {
			return -1, nil
		}

		return pos, nil
	}

	var (
		idx columnIndex
		err error
	)
	cols := ds.columns

	if idx.site, err = lookup(cols.Site, true); err != nil {
		return idx, err
	}
	if idx.payload, err = lookup(cols.Payload, true); err != nil {
		return idx, err
	}
	if idx.class, err = lookup(cols.Class, true); err != nil {
		return idx, err
	}
	if idx.booster, err = lookup(cols.Booster, true); err != nil {
		return idx, err
	}

	idx.boosterVersion, _ = lookup(cols.BoosterVersion, false)
	idx.flightNumber, _ = lookup(cols.FlightNumber, false)

	return idx, nil
}

func (ds *Dataset) parseRow(row []string, idx columnIndex) (model.LaunchRecord, error) {
	var record model.LaunchRecord

	site := strings.TrimSpace(row[idx.site])
	if site == "" {
		return record, fmt.Errorf("empty %q", ds.columns.Site)
	}
	record.Site = model.Site(site)

	payload, err := strconv.ParseFloat(strings.TrimSpace(row[idx.payload]), 64)
	if err != nil {
		return record, fmt.Errorf("invalid %q: %w", ds.columns.Payload, err)
	}
	if math.IsNaN(payload) || math.IsInf(payload, 0) {
		return record, fmt.Errorf("invalid %q: not a finite number: %q", ds.columns.Payload, row[idx.payload])
	}
	if payload < 0 {
		return record, fmt.Errorf("invalid %q: negative mass: %v", ds.columns.Payload, payload)
	}
	record.PayloadMass = payload

	class, err := strconv.ParseFloat(strings.TrimSpace(row[idx.class]), 64)
	if err != nil {
		return record, fmt.Errorf("invalid %q: %w", ds.columns.Class, err)
	}
	record.Class = model.OutcomeClass(class)
	if float64(record.Class) != class || !record.Class.IsValid() {
		return record, fmt.Errorf("invalid %q: expected 0 or 1, got %v", ds.columns.Class, row[idx.class])
	}

	record.BoosterCategory = strings.TrimSpace(row[idx.booster])

	if idx.boosterVersion >= 0 {
		record.BoosterVersion = strings.TrimSpace(row[idx.boosterVersion])
	}

	if idx.flightNumber >= 0 {
		if value := strings.TrimSpace(row[idx.flightNumber]); value != "" {
			flight, err := strconv.Atoi(value)
			if err != nil {
				return record, fmt.Errorf("invalid %q: %w", ds.columns.FlightNumber, err)
			}
			record.FlightNumber = flight
		}
	}

	return record, nil
}

// Columns returns the header names used to load the dataset.
func (ds *Dataset) Columns() config.Columns {
	return ds.columns
}

// Len returns the number of launch records.
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// Records returns a copy of all launch records, in file order.
func (ds *Dataset) Records() []model.LaunchRecord {
	return slices.Clone(ds.records)
}

// MinPayload is the lowest payload mass observed in the dataset.
func (ds *Dataset) MinPayload() float64 {
	return ds.minPayload
}

// MaxPayload is the highest payload mass observed in the dataset.
func (ds *Dataset) MaxPayload() float64 {
	return ds.maxPayload
}

// PayloadBounds returns the observed [MinPayload, MaxPayload] range.
func (ds *Dataset) PayloadBounds() model.PayloadRange {
	return model.PayloadRange{Low: ds.minPayload, High: ds.maxPayload}
}

// Sites returns the selectable sites: [model.AllSites] followed by every distinct launch site,
// in order of first appearance.
func (ds *Dataset) Sites() []model.Site {
	sites := make([]model.Site, 0, len(ds.sites)+1)
	sites = append(sites, model.AllSites)

	return append(sites, ds.sites...)
}

// LaunchSites returns the distinct launch sites, in order of first appearance.
func (ds *Dataset) LaunchSites() []model.Site {
	return slices.Clone(ds.sites)
}

// HasSite reports whether the site is a valid selection, i.e. a known launch site or [model.AllSites].
func (ds *Dataset) HasSite(site model.Site) bool {
	return site.IsAll() || slices.Contains(ds.sites, site)
}

// BoosterCategories returns the distinct booster version categories, in order of first appearance.
func (ds *Dataset) BoosterCategories() []string {
	return slices.Clone(ds.boosters)
}

// FilterSite returns the records launched from a site.
//
// All records are returned for [model.AllSites].
func (ds *Dataset) FilterSite(site model.Site) []model.LaunchRecord {
	return ds.Filter(site, model.PayloadRange{Low: ds.minPayload, High: ds.maxPayload})
}

// FilterPayload returns the records with a payload mass within the inclusive range, for all sites.
func (ds *Dataset) FilterPayload(payload model.PayloadRange) []model.LaunchRecord {
	return ds.Filter(model.AllSites, payload)
}

// Filter returns the records with a payload mass within the inclusive range, restricted to a site
// unless [model.AllSites] is selected.
func (ds *Dataset) Filter(site model.Site, payload model.PayloadRange) []model.LaunchRecord {
	payload = payload.Normalized()
	filtered := make([]model.LaunchRecord, 0, len(ds.records))

	for _, record := range ds.records {
		if !payload.Contains(record.PayloadMass) {
			continue
		}

		if !site.IsAll() && record.Site != site {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered
}

// SumClassBySite aggregates the outcome class of all records by launch site.
//
// Since the class is 1 for a success, this yields the number of successful launches per site.
// Sites are listed in order of first appearance.
func (ds *Dataset) SumClassBySite() []model.SiteCount {
	index := make(map[model.Site]int, len(ds.sites))
	counts := make([]model.SiteCount, 0, len(ds.sites))

	for _, site := range ds.sites {
		index[site] = len(counts)
		counts = append(counts, model.SiteCount{Site: site})
	}

	for _, record := range ds.records {
		counts[index[record.Site]].Value += int(record.Class)
	}

	return counts
}

// CountByClass counts the launches for each outcome class at a site.
//
// Only classes with at least one launch are returned, in ascending class order.
// An unknown site yields an empty result.
func (ds *Dataset) CountByClass(site model.Site) []model.ClassCount {
	var failures, successes int

	for _, record := range ds.FilterSite(site) {
		if record.Class == model.OutcomeSuccess {
			successes++

			continue
		}

		failures++
	}

	counts := make([]model.ClassCount, 0, 2) //nolint:mnd // binary outcome
	if failures > 0 {
		counts = append(counts, model.ClassCount{Class: model.OutcomeFailure, Count: failures})
	}
	if successes > 0 {
		counts = append(counts, model.ClassCount{Class: model.OutcomeSuccess, Count: successes})
	}

	return counts
}
