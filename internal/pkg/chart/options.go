package chart

// Theme constants from go-echarts.
const (
	ThemeWhite = "white"
	ThemeRoma  = "roma"
)

const (
	defaultWidth  = "900px"
	defaultHeight = "500px"
)

// Option configures a [Chart].
type Option func(*options)

type options struct {
	ID             string
	Title          string
	Subtitle       string
	XAxisLabel     string
	YAxisLabel     string
	Theme          string
	ShowLegend     bool
	LegendPosition string
	Width          string
	Height         string
}

// WithID sets the identifier of the HTML element hosting the chart.
//
// The identifier is used as a javascript variable name: it must be a valid identifier.
func WithID(id string) Option {
	return func(c *options) {
		c.ID = id
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(c *options) {
		c.Title = title
	}
}

// WithSubtitle sets the chart subtitle.
func WithSubtitle(subtitle string) Option {
	return func(c *options) {
		c.Subtitle = subtitle
	}
}

// WithTheme sets the color theme.
func WithTheme(theme string) Option {
	return func(c *options) {
		if theme == "" {
			return
		}

		c.Theme = theme
	}
}

// WithLegend enables or disables the legend.
func WithLegend(show bool) Option {
	return func(c *options) {
		c.ShowLegend = show
	}
}

// WithLegendPosition sets the side of the chart where the legend is displayed.
//
// Supported positions are "top", "bottom", "left" and "right". Defaults to "right".
func WithLegendPosition(position string) Option {
	return func(c *options) {
		if position == "" {
			return
		}

		c.LegendPosition = position
	}
}

// WithXAxisLabel sets the X-axis label text.
func WithXAxisLabel(xlabel string) Option {
	return func(c *options) {
		c.XAxisLabel = xlabel
	}
}

// WithYAxisLabel sets the Y-axis label text.
func WithYAxisLabel(ylabel string) Option {
	return func(c *options) {
		c.YAxisLabel = ylabel
	}
}

// WithSize sets the dimensions of the chart canvas, as CSS lengths (e.g. "900px", "100%").
func WithSize(width, height string) Option {
	return func(c *options) {
		if width != "" {
			c.Width = width
		}
		if height != "" {
			c.Height = height
		}
	}
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		Theme:          ThemeWhite,
		ShowLegend:     true,
		LegendPosition: "right",
		Width:          defaultWidth,
		Height:         defaultHeight,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}
