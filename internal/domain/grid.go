package domain

import "github.com/paulmach/orb"

// LODLevel names one of the fixed aggregation resolutions.
type LODLevel string

const (
	LevelSmall      LODLevel = "small"
	LevelMedium     LODLevel = "medium"
	LevelLarge      LODLevel = "large"
	LevelExtraLarge LODLevel = "extraLarge"
)

// AllLevels lists the levels from finest to coarsest.
var AllLevels = []LODLevel{LevelSmall, LevelMedium, LevelLarge, LevelExtraLarge}

// Cell sizes in degrees. small < medium < large < extraLarge.
const (
	CellSizeSmall      = 0.02
	CellSizeMedium     = 0.05
	CellSizeLarge      = 0.2
	CellSizeExtraLarge = 0.5
)

// CellSize returns the level's cell edge in degrees, or 0 for an unknown level.
func (l LODLevel) CellSize() float64 {
	switch l {
	case LevelSmall:
		return CellSizeSmall
	case LevelMedium:
		return CellSizeMedium
	case LevelLarge:
		return CellSizeLarge
	case LevelExtraLarge:
		return CellSizeExtraLarge
	default:
		return 0
	}
}

// GridCell is one non-empty lattice cell. Bounds.Min is the south-west
// corner as (lon, lat); Bounds.Max is Min plus CellSize on both axes.
type GridCell struct {
	Bounds   orb.Bound     `json:"bounds"`
	CellSize float64       `json:"cell_size"`
	Count    int           `json:"count"`
	Members  []Observation `json:"members"`
}

// Levels holds one aggregation per LOD level over the same observation set.
type Levels struct {
	Small      []GridCell `json:"small"`
	Medium     []GridCell `json:"medium"`
	Large      []GridCell `json:"large"`
	ExtraLarge []GridCell `json:"extra_large"`
}

// Cells returns the cells built for level.
func (l Levels) Cells(level LODLevel) []GridCell {
	switch level {
	case LevelSmall:
		return l.Small
	case LevelMedium:
		return l.Medium
	case LevelLarge:
		return l.Large
	case LevelExtraLarge:
		return l.ExtraLarge
	default:
		return nil
	}
}

// Within returns the cells of level that intersect viewport.
func (l Levels) Within(level LODLevel, viewport orb.Bound) []GridCell {
	cells := l.Cells(level)
	out := make([]GridCell, 0, len(cells))
	for _, c := range cells {
		if c.Bounds.Intersects(viewport) {
			out = append(out, c)
		}
	}
	return out
}
