package services

import (
	"biodiversity-map-service/internal/domain"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

type cellIndex struct {
	lat, lon int64
}

// Aggregate bins observations into a regular lattice of cellSize-degree
// cells anchored at the origin. An observation lands in the cell whose
// south-west corner is (floor(lat/cellSize)*cellSize, floor(lon/cellSize)*cellSize).
//
// Observations without usable coordinates are skipped. Only cells with at
// least one member are returned. The result depends only on the set of
// inputs; cells come back sorted south-west first, but callers must not
// depend on any ordering.
func Aggregate(observations []domain.Observation, cellSize float64) []domain.GridCell {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil
	}

	cells := make(map[cellIndex]*domain.GridCell)
	for _, o := range observations {
		c, ok := o.Coordinates()
		if !ok {
			continue
		}

		idx := cellIndex{
			lat: int64(math.Floor(c.Lat / cellSize)),
			lon: int64(math.Floor(c.Lon / cellSize)),
		}

		cell, ok := cells[idx]
		if !ok {
			minLat := float64(idx.lat) * cellSize
			minLon := float64(idx.lon) * cellSize
			cell = &domain.GridCell{
				Bounds: orb.Bound{
					Min: orb.Point{minLon, minLat},
					Max: orb.Point{minLon + cellSize, minLat + cellSize},
				},
				CellSize: cellSize,
			}
			cells[idx] = cell
		}
		cell.Count++
		cell.Members = append(cell.Members, o)
	}

	keys := make([]cellIndex, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lat != keys[j].lat {
			return keys[i].lat < keys[j].lat
		}
		return keys[i].lon < keys[j].lon
	})

	out := make([]domain.GridCell, 0, len(keys))
	for _, k := range keys {
		out = append(out, *cells[k])
	}
	return out
}

// BuildLevels aggregates the same observation set at every LOD level.
// It is rebuilt from scratch whenever the set changes.
func BuildLevels(observations []domain.Observation) domain.Levels {
	return domain.Levels{
		Small:      Aggregate(observations, domain.LevelSmall.CellSize()),
		Medium:     Aggregate(observations, domain.LevelMedium.CellSize()),
		Large:      Aggregate(observations, domain.LevelLarge.CellSize()),
		ExtraLarge: Aggregate(observations, domain.LevelExtraLarge.CellSize()),
	}
}
