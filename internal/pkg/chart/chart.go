package chart

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

const (
	defaultFontSize = 12
	axisNameGap     = 32
	pieRadius       = "60%"
)

// Kind is the type of a [Chart].
type Kind string

// Supported chart kinds.
const (
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

// Slice is a named sector of a pie chart.
type Slice struct {
	Name  string
	Value float64
}

// Point is a single (X, Y) observation of a scatter chart.
//
// The Name is used by tooltips when hovering over a data point.
type Point struct {
	Name string
	X    float64
	Y    float64
}

// Series represents a named data series in a scatter chart.
//
// Each series is rendered with its own color.
type Series struct {
	Name   string
	Points []Point
}

// Chart is the specification of a renderable chart.
//
// A [Chart] is a plain value: it is built by chart handlers and only turned into
// an echarts configuration when rendered.
type Chart struct {
	options

	Kind   Kind
	Slices []Slice
	Series []Series
}

// Renderable is a go-echarts chart ready to be rendered.
type Renderable interface {
	components.Charter
	render.Renderer

	JSON() map[string]any
}

// NewPie creates a new pie chart.
func NewPie(opts ...Option) *Chart {
	return &Chart{
		Kind:    KindPie,
		options: optionsWithDefaults(opts),
	}
}

// NewScatter creates a new scatter chart.
func NewScatter(opts ...Option) *Chart {
	return &Chart{
		Kind:    KindScatter,
		options: optionsWithDefaults(opts),
	}
}

// AddSlice adds a named sector to a pie chart.
func (c *Chart) AddSlice(name string, value float64) {
	c.Slices = append(c.Slices, Slice{Name: name, Value: value})
}

// AddSeries adds a named data series to a scatter chart.
func (c *Chart) AddSeries(name string, points []Point) {
	c.Series = append(c.Series, Series{Name: name, Points: points})
}

// Len returns the number of data items of the chart: slices for a pie, points for a scatter.
func (c *Chart) Len() int {
	if c.Kind == KindPie {
		return len(c.Slices)
	}

	var n int
	for _, s := range c.Series {
		n += len(s.Points)
	}

	return n
}

// Build creates the echarts chart from the accumulated configuration.
func (c *Chart) Build() Renderable {
	if c.Kind == KindPie {
		return c.buildPie()
	}

	return c.buildScatter()
}

// Option returns the echarts option document of the chart.
func (c *Chart) Option() map[string]any {
	r := c.Build()
	r.Validate()

	return r.JSON()
}

// MarshalJSON renders the chart as its echarts option document.
func (c *Chart) MarshalJSON() ([]byte, error) {
	buf, err := json.Marshal(c.Option())
	if err != nil {
		return nil, fmt.Errorf("marshaling %s chart option: %w", c.Kind, err)
	}

	return buf, nil
}

// Render writes the chart as a standalone HTML page.
func (c *Chart) Render(w io.Writer) error {
	return c.Build().Render(w)
}

// Snippet renders the chart as an HTML element and the script initializing it.
func (c *Chart) Snippet() render.ChartSnippet {
	return c.Build().RenderSnippet()
}

func (c *Chart) buildPie() *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOptions(echartsopts.Tooltip{
		Show:    echartsopts.Bool(true),
		Trigger: "item",
	})...)

	data := make([]echartsopts.PieData, 0, len(c.Slices))
	for _, slice := range c.Slices {
		data = append(data, echartsopts.PieData{
			Name:  slice.Name,
			Value: slice.Value,
		})
	}

	pie.AddSeries(c.Title, data,
		charts.WithPieChartOpts(echartsopts.PieChart{
			Radius: pieRadius,
		}),
		charts.WithLabelOpts(echartsopts.Label{
			Show:      echartsopts.Bool(true),
			Formatter: "{b}: {d}%",
		}),
	)

	return pie
}

func (c *Chart) buildScatter() *charts.Scatter {
	scatter := charts.NewScatter()
	global := c.globalOptions(echartsopts.Tooltip{
		Show:    echartsopts.Bool(true),
		Trigger: "item",
	})

	xAxisOpts, yAxisOpts := c.setAxes()
	global = append(global,
		charts.WithXAxisOpts(xAxisOpts),
		charts.WithYAxisOpts(yAxisOpts),
		charts.WithGridOpts(echartsopts.Grid{
			Bottom: "80",
			Top:    "80",
		}),
	)
	scatter.SetGlobalOptions(global...)

	for _, s := range c.Series {
		data := make([]echartsopts.ScatterData, 0, len(s.Points))
		for _, point := range s.Points {
			data = append(data, echartsopts.ScatterData{
				Name:  point.Name,
				Value: []float64{point.X, point.Y},
			})
		}

		scatter.AddSeries(s.Name, data)
	}

	return scatter
}

func (c *Chart) globalOptions(tooltip echartsopts.Tooltip) []charts.GlobalOpts {
	// Title options
	titleOpts := echartsopts.Title{
		Title: c.Title,
	}
	if c.Subtitle != "" {
		titleOpts.Subtitle = c.Subtitle
		titleOpts.SubtitleStyle = &echartsopts.TextStyle{
			FontStyle: "italic",
			FontSize:  defaultFontSize,
		}
	}

	// Legend options
	legendOpts := echartsopts.Legend{
		Show: echartsopts.Bool(c.ShowLegend),
	}
	if c.ShowLegend {
		switch c.LegendPosition {
		case "left", "right":
			legendOpts.Orient = "vertical"
			legendOpts.X = c.LegendPosition
			legendOpts.Y = "middle"
		case "top":
			legendOpts.X = "center"
			legendOpts.Y = "30"
		default:
			legendOpts.X = "center"
			legendOpts.Y = "bottom"
		}
	}

	// Toolbox options
	toolboxOpts := echartsopts.Toolbox{
		Left: "right",
		Feature: &echartsopts.ToolBoxFeature{
			SaveAsImage: &echartsopts.ToolBoxFeatureSaveAsImage{
				Title: "Save as image",
			},
		},
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(echartsopts.Initialization{
			ChartID: c.ID,
			Theme:   c.Theme,
			Width:   c.Width,
			Height:  c.Height,
		}),
		charts.WithToolboxOpts(toolboxOpts),
		charts.WithTitleOpts(titleOpts),
		charts.WithLegendOpts(legendOpts),
		charts.WithTooltipOpts(tooltip),
	}
}

func (c *Chart) setAxes() (echartsopts.XAxis, echartsopts.YAxis) {
	const valueType = "value"

	xAxisOpts := echartsopts.XAxis{
		Name:         c.XAxisLabel,
		Type:         valueType,
		NameLocation: "center",
		NameGap:      axisNameGap,
		Scale:        echartsopts.Bool(true),
		AxisTick: &echartsopts.AxisTick{
			AlignWithLabel: echartsopts.Bool(true),
		},
	}

	// the outcome class is either 0 or 1
	yAxisOpts := echartsopts.YAxis{
		Name:         c.YAxisLabel,
		Type:         valueType,
		NameLocation: "center",
		NameGap:      axisNameGap,
		Min:          -0.5,
		Max:          1.5,
		MinInterval:  1,
		AxisLabel: &echartsopts.AxisLabel{
			Show: echartsopts.Bool(true),
		},
	}

	return xAxisOpts, yAxisOpts
}
