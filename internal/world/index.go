package world

import (
	"github.com/dhconnelly/rtreego"
)

const minRectSize = 1e-6

// rtreeEntry adapts a GeometryElement to rtreego.Spatial.
type rtreeEntry struct {
	elem *GeometryElement
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect { return e.rect }

func newRTreeEntry(elem *GeometryElement) *rtreeEntry {
	minX, minY, maxX, maxY := elem.boundingBox()
	lenX := maxX - minX
	lenY := maxY - minY
	if lenX < minRectSize {
		lenX = minRectSize
	}
	if lenY < minRectSize {
		lenY = minRectSize
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	if err != nil {
		// A degenerate rect (zero-length lane element) still needs a
		// valid bounding box; fall back to a minimal square around the
		// point rather than failing index construction.
		rect, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{minRectSize, minRectSize})
	}
	return &rtreeEntry{elem: elem, rect: rect}
}

// SpatialIndex is the single R-tree over every geometry element of every
// lane.
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex builds an empty index. minChildren/maxChildren follow
// rtreego's recommended defaults for road-network-scale datasets.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{tree: rtreego.NewTree(2, 25, 50)}
}

// Insert adds one geometry element's coarse bounding box to the index.
func (idx *SpatialIndex) Insert(elem *GeometryElement) {
	idx.tree.Insert(newRTreeEntry(elem))
}

// QueryBox returns every geometry element whose coarse bounding box
// overlaps [minX,minY]-[maxX,maxY].
func (idx *SpatialIndex) QueryBox(minX, minY, maxX, maxY float64) []*GeometryElement {
	lenX := maxX - minX
	lenY := maxY - minY
	if lenX < minRectSize {
		lenX = minRectSize
	}
	if lenY < minRectSize {
		lenY = minRectSize
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(rect)
	out := make([]*GeometryElement, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*rtreeEntry).elem)
	}
	return out
}

// BuildIndex inserts every geometry element of every lane of every road
// in g. Called once after Build.
func BuildIndex(g *Graph) *SpatialIndex {
	idx := NewSpatialIndex()
	for _, road := range g.Roads {
		for _, section := range road.Sections {
			for _, lane := range section.Lanes {
				for _, raw := range lane.Elements() {
					elem := raw
					idx.Insert(&elem)
				}
			}
		}
	}
	return idx
}
