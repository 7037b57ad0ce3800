package handler

import (
	"context"
	"fmt"
	"math"

	"github.com/fredbi/launchdash/internal/pkg/chart"
	"github.com/fredbi/launchdash/internal/pkg/layout"
	"github.com/fredbi/launchdash/internal/pkg/model"
	"github.com/fredbi/launchdash/internal/pkg/reactive"
)

// Bind declares the inputs of a dashboard layout on a reactive runtime and registers the chart callbacks:
// the pie chart depends on the site dropdown, the scatter chart on both the site dropdown and the payload slider.
func (h *Handlers) Bind(rt *reactive.Runtime, l *layout.Layout) error {
	for _, input := range l.Inputs() {
		if err := rt.Input(input.ID, "value", input.Value); err != nil {
			return fmt.Errorf("binding input: %w", err)
		}
	}

	pie := func(_ context.Context, in reactive.Values) (any, error) {
		site, err := SiteValue(in[layout.SiteDropdownID])
		if err != nil {
			return nil, err
		}

		return h.PieChart(site, chart.WithID(layout.ChartElementID(layout.PieChartID))), nil
	}

	if err := rt.Callback(layout.PieChartID, []string{layout.SiteDropdownID}, pie); err != nil {
		return fmt.Errorf("binding pie chart: %w", err)
	}

	scatter := func(_ context.Context, in reactive.Values) (any, error) {
		site, err := SiteValue(in[layout.SiteDropdownID])
		if err != nil {
			return nil, err
		}

		payload, err := PayloadValue(in[layout.PayloadSliderID])
		if err != nil {
			return nil, err
		}

		return h.ScatterChart(site, payload, chart.WithID(layout.ChartElementID(layout.ScatterChartID))), nil
	}

	if err := rt.Callback(layout.ScatterChartID, []string{layout.SiteDropdownID, layout.PayloadSliderID}, scatter); err != nil {
		return fmt.Errorf("binding scatter chart: %w", err)
	}

	return nil
}

// SiteValue interprets the value of the site dropdown. An empty selection stands for all sites.
func SiteValue(value any) (model.Site, error) {
	switch v := value.(type) {
	case nil:
		return model.AllSites, nil
	case string:
		if v == "" {
			return model.AllSites, nil
		}

		return model.Site(v), nil
	case model.Site:
		return v, nil
	default:
		return "", fmt.Errorf("%w: site must be a string, got %T", reactive.ErrInvalidValue, value)
	}
}

// PayloadValue interprets the value of the payload slider as a pair [low, high].
//
// A reversed pair is normalized.
func PayloadValue(value any) (model.PayloadRange, error) {
	var bounds []float64

	switch v := value.(type) {
	case []float64:
		bounds = v
	case []any:
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				return model.PayloadRange{}, fmt.Errorf("%w: payload bounds must be numbers, got %T", reactive.ErrInvalidValue, item)
			}

			bounds = append(bounds, f)
		}
	case model.PayloadRange:
		return v.Normalized(), nil
	default:
		return model.PayloadRange{}, fmt.Errorf("%w: payload range must be a pair of numbers, got %T", reactive.ErrInvalidValue, value)
	}

	if len(bounds) != 2 { //nolint:mnd // low, high
		return model.PayloadRange{}, fmt.Errorf("%w: payload range must be a pair of numbers, got %d values", reactive.ErrInvalidValue, len(bounds))
	}

	for _, bound := range bounds {
		if math.IsNaN(bound) || math.IsInf(bound, 0) {
			return model.PayloadRange{}, fmt.Errorf("%w: payload bound is not finite", reactive.ErrInvalidValue)
		}
	}

	return model.NewPayloadRange(bounds[0], bounds[1]), nil
}
