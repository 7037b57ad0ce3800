// Package handler maps dashboard selections to chart specifications.
//
// Handlers are pure: they derive a fresh filtered view of the dataset on every call
// and never fail on selections that match no launch record.
package handler

import (
	"log/slog"

	"github.com/fredbi/launchdash/internal/pkg/chart"
	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/dataset"
	"github.com/fredbi/launchdash/internal/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Chart titles.
const (
	PieTitleAllSites     = "Total Success Launches By Site"
	PieTitleSite         = "Total Success Launches for site "
	ScatterTitleAllSites = "Success count on Payload mass for all sites"
	ScatterTitleSite     = "Success count on Payload mass for site "
)

// Handlers build the charts of the dashboard from a [dataset.Dataset].
type Handlers struct {
	cfg *config.Config
	ds  *dataset.Dataset
	l   *slog.Logger
}

// New creates chart [Handlers], given a [config.Config] and a loaded [dataset.Dataset].
func New(cfg *config.Config, ds *dataset.Dataset) *Handlers {
	return &Handlers{
		cfg: cfg,
		ds:  ds,
		l:   slog.Default().With(slog.String("module", "handler")),
	}
}

// Dataset returns the launch records the handlers work on.
func (h *Handlers) Dataset() *dataset.Dataset {
	return h.ds
}

// PieChart builds the success pie chart for a site selection.
//
// For all sites, there is one slice per launch site, sized by the sum of the outcome class,
// i.e. the number of successful launches. For a single site, there is one slice per outcome class
// present at that site, sized by the number of launches.
func (h *Handlers) PieChart(site model.Site, opts ...chart.Option) *chart.Chart {
	h.checkSite(site)

	if site.IsAll() {
		c := chart.NewPie(h.chartOptions(PieTitleAllSites, opts)...)
		for _, count := range h.ds.SumClassBySite() {
			c.AddSlice(count.Site.String(), float64(count.Value))
		}

		h.l.Debug("pie chart built", slog.String("site", model.AllSites.String()), slog.Int("slices", c.Len()))

		return c
	}

	c := chart.NewPie(h.chartOptions(PieTitleSite+site.String(), opts)...)
	for _, count := range h.ds.CountByClass(site) {
		c.AddSlice(count.Class.String(), float64(count.Count))
	}

	h.l.Debug("pie chart built", slog.String("site", site.String()), slog.Int("slices", c.Len()))

	return c
}

// ScatterChart builds the payload vs. outcome scatter chart for a site selection and a payload range.
//
// Points are colored by booster version category. Bounds of the payload range are inclusive.
func (h *Handlers) ScatterChart(site model.Site, payload model.PayloadRange, opts ...chart.Option) *chart.Chart {
	h.checkSite(site)

	payload = payload.Normalized()
	title := ScatterTitleAllSites
	if !site.IsAll() {
		title = ScatterTitleSite + site.String()
	}

	columns := h.ds.Columns()
	base := []chart.Option{
		chart.WithSubtitle(h.rangeLabel(payload)),
		chart.WithXAxisLabel(columns.Payload),
		chart.WithYAxisLabel(columns.Class),
	}
	c := chart.NewScatter(h.chartOptions(title, append(base, opts...))...)

	records := h.ds.Filter(site, payload)
	var categories []string
	groups := make(map[string][]chart.Point)

	for _, record := range records {
		points, seen := groups[record.BoosterCategory]
		if !seen {
			categories = append(categories, record.BoosterCategory)
		}

		name := record.BoosterVersion
		if name == "" {
			name = record.Site.String()
		}

		groups[record.BoosterCategory] = append(points, chart.Point{
			Name: name,
			X:    record.PayloadMass,
			Y:    float64(record.Class),
		})
	}

	for _, category := range categories {
		c.AddSeries(category, groups[category])
	}

	h.l.Debug("scatter chart built",
		slog.String("site", site.String()),
		slog.Float64("payload_low", payload.Low),
		slog.Float64("payload_high", payload.High),
		slog.Int("points", c.Len()),
	)

	return c
}

// checkSite logs selections matching no launch site. These yield empty charts, not errors.
func (h *Handlers) checkSite(site model.Site) {
	if h.ds.HasSite(site) {
		return
	}

	h.l.Debug("unknown launch site, chart is empty", slog.String("site", site.String()))
}

func (h *Handlers) chartOptions(title string, extra []chart.Option) []chart.Option {
	opts := []chart.Option{chart.WithTitle(title)}

	if h.cfg != nil {
		render := h.cfg.Render
		opts = append(opts,
			chart.WithTheme(render.Theme),
			chart.WithLegend(render.Legend != config.LegendPositionNone),
			chart.WithLegendPosition(render.Legend.String()),
			chart.WithSize(render.Width, render.Height),
		)
	}

	return append(opts, extra...)
}

func (h *Handlers) rangeLabel(payload model.PayloadRange) string {
	p := message.NewPrinter(language.English)

	return p.Sprintf("Payload range: %.0f - %.0f kg", payload.Low, payload.High)
}
