package config

// LegendPosition controls where the chart legend is displayed.
type LegendPosition string

// Supported legend positions.
const (
	LegendPositionNone   LegendPosition = "none"
	LegendPositionBottom LegendPosition = "bottom"
	LegendPositionTop    LegendPosition = "top"
	LegendPositionLeft   LegendPosition = "left"
	LegendPositionRight  LegendPosition = "right"
)

// String returns the legend position as a plain string.
func (p LegendPosition) String() string {
	return string(p)
}

// IsValid reports whether the legend position is one of the known positions.
func (p LegendPosition) IsValid() bool {
	switch p {
	case LegendPositionNone, LegendPositionBottom, LegendPositionTop, LegendPositionLeft, LegendPositionRight:
		return true
	default:
		return false
	}
}

// AllLegendPositions returns all known legend positions.
func AllLegendPositions() []LegendPosition {
	return []LegendPosition{
		LegendPositionNone,
		LegendPositionBottom,
		LegendPositionTop,
		LegendPositionLeft,
		LegendPositionRight,
	}
}
