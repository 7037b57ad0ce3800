package layout

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fredbi/launchdash/internal/pkg/chart"
	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/dataset"
	"github.com/fredbi/launchdash/internal/pkg/model"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestBuild(t *testing.T) {
	l := mustLayout(t)

	assert.Equal(t, "SpaceX Launch Records Dashboard", l.Title)
	require.Equal(t, KindDiv, l.Root.Kind)
	require.NotEmpty(t, l.Root.Children)

	heading := l.Root.Children[0]
	assert.Equal(t, KindHeading, heading.Kind)
	assert.Equal(t, l.Title, heading.Text)
	assert.Equal(t, "center", heading.Style["text-align"])
	assert.Equal(t, "#503D36", heading.Style["color"])
	assert.Equal(t, "40px", heading.Style["font-size"])
}

func TestDropdown(t *testing.T) {
	l := mustLayout(t)

	dropdown, ok := l.Find(SiteDropdownID)
	require.True(t, ok)
	assert.Equal(t, KindDropdown, dropdown.Kind)
	assert.True(t, dropdown.Searchable)
	assert.Equal(t, model.AllSites.String(), dropdown.Value)
	assert.Equal(t, "Select a Launch Site here", dropdown.Placeholder)

	require.Len(t, dropdown.Options, 5)
	assert.Equal(t, Choice{Label: "ALL", Value: "ALL"}, dropdown.Options[0])
	assert.Equal(t, Choice{Label: "CCAFS LC-40", Value: "CCAFS LC-40"}, dropdown.Options[1])
}

func TestRangeSlider(t *testing.T) {
	l := mustLayout(t)

	slider, ok := l.Find(PayloadSliderID)
	require.True(t, ok)
	assert.Equal(t, KindRangeSlider, slider.Kind)
	assert.InDelta(t, 0, slider.Min, 1e-9)
	assert.InDelta(t, 10000, slider.Max, 1e-9)
	assert.InDelta(t, 1000, slider.Step, 1e-9)
	assert.Equal(t, []float64{0, 9600}, slider.Value)

	require.Len(t, slider.Marks, 11)
	assert.Equal(t, Mark{Value: 0, Label: "0"}, slider.Marks[0])
	assert.Equal(t, Mark{Value: 2000, Label: "2,000"}, slider.Marks[2])
	assert.Equal(t, Mark{Value: 10000, Label: "10,000"}, slider.Marks[10])
}

func TestMarks(t *testing.T) {
	assert.Empty(t, marks(0, 100, 0))
	assert.Empty(t, marks(100, 0, 10))
	assert.Equal(t, []Mark{{Value: 5, Label: "5"}}, marks(5, 5, 1))
	assert.Len(t, marks(0, 10000, 2500), 5)
}

func TestInputsAndGraphs(t *testing.T) {
	l := mustLayout(t)

	inputs := l.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, SiteDropdownID, inputs[0].ID)
	assert.Equal(t, PayloadSliderID, inputs[1].ID)

	graphs := l.Graphs()
	require.Len(t, graphs, 2)
	assert.Equal(t, PieChartID, graphs[0].ID)
	assert.Equal(t, ScatterChartID, graphs[1].ID)
	assert.Equal(t, "success_pie_chart", graphs[0].ChartElementID())

	_, ok := l.Find("no-such-widget")
	assert.False(t, ok)
	_, ok = l.Find("")
	assert.False(t, ok)
}

func TestLayoutJSON(t *testing.T) {
	l := mustLayout(t)

	buf, err := json.Marshal(l.Root)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Children []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(buf, &decoded))

	assert.Equal(t, "div", decoded.Type)
	require.Len(t, decoded.Children, 8)
	assert.Equal(t, "dropdown", decoded.Children[1].Type)
	assert.Equal(t, SiteDropdownID, decoded.Children[1].ID)
	assert.Equal(t, "range-slider", decoded.Children[6].Type)
}

func TestRender(t *testing.T) {
	l := mustLayout(t)

	initial := map[string]*chart.Chart{
		PieChartID: chart.NewPie(
			chart.WithID(ChartElementID(PieChartID)),
			chart.WithTitle("Total Success Launches By Site"),
		),
		ScatterChartID: chart.NewScatter(
			chart.WithID(ChartElementID(ScatterChartID)),
			chart.WithTitle("Success count on Payload mass for all sites"),
		),
	}
	initial[PieChartID].AddSlice("KSC LC-39A", 9)

	var buf bytes.Buffer
	require.NoError(t, l.Render(&buf, initial, "/_launchdash-update"))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>SpaceX Launch Records Dashboard</title>")
	assert.Contains(t, html, "echarts.min.js")
	assert.Contains(t, html, `id="site-dropdown"`)
	assert.Contains(t, html, `<option value="ALL" selected>ALL</option>`)
	assert.Contains(t, html, `id="payload-slider"`)
	assert.Contains(t, html, `value="9600"`)
	// a coarse step would snap the initial handles to the nearest mark
	assert.Contains(t, html, `step="any"`)
	assert.NotContains(t, html, `step="1000"`)
	assert.Contains(t, html, `<option value="9000" label="9,000">`)
	assert.Contains(t, html, `id="success_pie_chart"`)
	assert.Contains(t, html, `id="success_payload_scatter_chart"`)
	assert.Contains(t, html, "KSC LC-39A")
	assert.Contains(t, html, "_launchdash-update")
	assert.Contains(t, html, "setOption")
}

func TestRenderWithoutCharts(t *testing.T) {
	l := mustLayout(t)

	var buf bytes.Buffer
	require.NoError(t, l.Render(&buf, nil, "/update"))

	assert.Contains(t, buf.String(), `<div id="success-pie-chart" class="graph">`)
	assert.NotContains(t, buf.String(), "echarts.min.js")
}

func TestStyleCSS(t *testing.T) {
	assert.Empty(t, styleCSS(nil))
	assert.Equal(t, "color:red;font-size:10px", string(styleCSS(map[string]string{
		"font-size": "10px",
		"color":     "red",
	})))
}

// helpers

func mustLayout(t *testing.T) *Layout {
	t.Helper()

	cfg, err := config.LoadDefaults()
	require.NoError(t, err)

	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "launches.csv"))
	require.NoError(t, err)

	return Build(cfg, ds)
}
