package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"math"
	"roadsearch/place"
)

const DefaultCellSize = 0.1

type cellId struct {
	x int
	y int
}

// GridIndex is an in-memory grid of place candidates. Cells are CellWidth x CellHeight degrees large.
type GridIndex struct {
	CellWidth  float64
	CellHeight float64
	cells      map[cellId][]place.Candidate
	count      int
}

func NewGridIndex(cellWidth float64, cellHeight float64) *GridIndex {
	if cellWidth <= 0 {
		cellWidth = DefaultCellSize
	}
	if cellHeight <= 0 {
		cellHeight = DefaultCellSize
	}

	return &GridIndex{
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		cells:      map[cellId][]place.Candidate{},
	}
}

func (g *GridIndex) Add(candidates ...place.Candidate) {
	for _, candidate := range candidates {
		cell := g.getCellIdForCoordinate(candidate.Position.Lon(), candidate.Position.Lat())
		g.cells[cell] = append(g.cells[cell], candidate)
		g.count++
	}
}

func (g *GridIndex) Len() int {
	return g.count
}

// Get returns all candidates within the bound, borders included. Candidates of one cell keep their insertion order.
func (g *GridIndex) Get(bbox orb.Bound) []place.Candidate {
	minCell := g.getCellIdForCoordinate(bbox.Min.Lon(), bbox.Min.Lat())
	maxCell := g.getCellIdForCoordinate(bbox.Max.Lon(), bbox.Max.Lat())
	sigolo.Tracef("Get candidates from cells x=%d..%d, y=%d..%d", minCell.x, maxCell.x, minCell.y, maxCell.y)

	var result []place.Candidate
	for cellX := minCell.x; cellX <= maxCell.x; cellX++ {
		for cellY := minCell.y; cellY <= maxCell.y; cellY++ {
			for _, candidate := range g.cells[cellId{cellX, cellY}] {
				if bbox.Contains(candidate.Position) {
					result = append(result, candidate)
				}
			}
		}
	}

	return result
}

func (g *GridIndex) getCellIdForCoordinate(x float64, y float64) cellId {
	return cellId{
		x: int(math.Floor(x / g.CellWidth)),
		y: int(math.Floor(y / g.CellHeight)),
	}
}
