// Package layout declares the widget tree of the dashboard.
//
// The layout is purely declarative: it is built once at startup, with defaults bound
// to the extremes of the loaded dataset.
package layout

import (
	"strings"

	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/dataset"
	"github.com/fredbi/launchdash/internal/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Identifiers of the dashboard widgets.
const (
	SiteDropdownID  = "site-dropdown"
	PieChartID      = "success-pie-chart"
	PayloadSliderID = "payload-slider"
	ScatterChartID  = "success-payload-scatter-chart"
)

// Kind is the type of a [Component].
type Kind string

// Supported components.
const (
	KindDiv         Kind = "div"
	KindHeading     Kind = "h1"
	KindParagraph   Kind = "p"
	KindBreak       Kind = "br"
	KindDropdown    Kind = "dropdown"
	KindRangeSlider Kind = "range-slider"
	KindGraph       Kind = "graph"
)

// Component is a node of the widget tree.
//
// Only the fields relevant to the component's [Kind] are set.
type Component struct {
	Kind        Kind              `json:"type"`
	ID          string            `json:"id,omitempty"`
	Text        string            `json:"text,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
	Options     []Choice          `json:"options,omitempty"`
	Value       any               `json:"value,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Searchable  bool              `json:"searchable,omitempty"`
	Min         float64           `json:"min,omitempty"`
	Max         float64           `json:"max,omitempty"`
	Step        float64           `json:"step,omitempty"`
	Marks       []Mark            `json:"marks,omitempty"`
	Children    []Component       `json:"children,omitempty"`
}

// IsInput reports whether the component holds a value that users may change.
func (c Component) IsInput() bool {
	return c.Kind == KindDropdown || c.Kind == KindRangeSlider
}

// ChartElementID is the identifier of the chart canvas hosted by a graph component.
//
// Chart identifiers are used as javascript variable names: dashes are not allowed.
func (c Component) ChartElementID() string {
	return ChartElementID(c.ID)
}

// ChartElementID converts a graph component ID into the ID of the chart canvas it hosts.
func ChartElementID(graphID string) string {
	return strings.ReplaceAll(graphID, "-", "_")
}

// Choice is a selectable option of a dropdown.
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Mark is a labeled tick of a range slider.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Layout is the widget tree of the dashboard.
type Layout struct {
	Title string
	Root  Component
}

// Build the dashboard [Layout] for a dataset.
//
// The site dropdown lists all sites and defaults to [model.AllSites]. The payload slider
// defaults to the observed payload extremes.
func Build(cfg *config.Config, ds *dataset.Dataset) *Layout {
	sites := ds.Sites()
	choices := make([]Choice, 0, len(sites))
	for _, site := range sites {
		choices = append(choices, Choice{Label: site.String(), Value: site.String()})
	}

	slider := cfg.Slider
	bounds := ds.PayloadBounds()

	return &Layout{
		Title: cfg.Render.Title,
		Root: Div(
			Heading(cfg.Render.Title, map[string]string{
				"text-align": "center",
				"color":      "#503D36",
				"font-size":  "40px",
			}),
			Dropdown(SiteDropdownID, choices, model.AllSites.String(), "Select a Launch Site here"),
			Break(),
			Div(Graph(PieChartID)),
			Break(),
			Paragraph("Payload range (Kg):"),
			RangeSlider(PayloadSliderID, slider.Min, slider.Max, slider.Step, []float64{bounds.Low, bounds.High}),
			Div(Graph(ScatterChartID)),
		),
	}
}

// Find the component with the given ID.
func (l *Layout) Find(id string) (Component, bool) {
	return find(l.Root, id)
}

func find(c Component, id string) (Component, bool) {
	if c.ID == id && id != "" {
		return c, true
	}

	for _, child := range c.Children {
		if found, ok := find(child, id); ok {
			return found, true
		}
	}

	return Component{}, false
}

// Inputs returns the input components of the layout, in document order.
func (l *Layout) Inputs() []Component {
	return collect(l.Root, Component.IsInput)
}

// Graphs returns the graph components of the layout, in document order.
func (l *Layout) Graphs() []Component {
	return collect(l.Root, func(c Component) bool { return c.Kind == KindGraph })
}

func collect(c Component, match func(Component) bool) []Component {
	var found []Component
	if match(c) {
		found = append(found, c)
	}

	for _, child := range c.Children {
		found = append(found, collect(child, match)...)
	}

	return found
}

// Div groups components.
func Div(children ...Component) Component {
	return Component{Kind: KindDiv, Children: children}
}

// Heading is a title label.
func Heading(text string, style map[string]string) Component {
	return Component{Kind: KindHeading, Text: text, Style: style}
}

// Paragraph is a text label.
func Paragraph(text string) Component {
	return Component{Kind: KindParagraph, Text: text}
}

// Break is a line break.
func Break() Component {
	return Component{Kind: KindBreak}
}

// Dropdown is a searchable single-select input.
func Dropdown(id string, choices []Choice, value, placeholder string) Component {
	return Component{
		Kind:        KindDropdown,
		ID:          id,
		Options:     choices,
		Value:       value,
		Placeholder: placeholder,
		Searchable:  true,
	}
}

// RangeSlider is a numeric dual-handle range input, with a mark at every step.
func RangeSlider(id string, low, high, step float64, value []float64) Component {
	return Component{
		Kind:  KindRangeSlider,
		ID:    id,
		Min:   low,
		Max:   high,
		Step:  step,
		Marks: marks(low, high, step),
		Value: value,
	}
}

// Graph is a placeholder for a chart output.
func Graph(id string) Component {
	return Component{Kind: KindGraph, ID: id}
}

func marks(low, high, step float64) []Mark {
	if step <= 0 || high < low {
		return nil
	}

	p := message.NewPrinter(language.English)
	n := int((high-low)/step) + 1
	result := make([]Mark, 0, n)

	for i := range n {
		value := low + float64(i)*step
		result = append(result, Mark{Value: value, Label: p.Sprintf("%d", int64(value))})
	}

	return result
}
