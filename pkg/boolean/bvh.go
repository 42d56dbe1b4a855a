package boolean

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// triSpatial is the BVH leaf rtreego indexes: a triangle index plus its
// padded bounding rect (mirrors pkg/kernel/sdfx's own triSpatial shape
// — see DESIGN.md).
type triSpatial struct {
	idx    int
	bounds *rtreego.Rect
}

func (t *triSpatial) Bounds() *rtreego.Rect { return t.bounds }

const boundsPad = 1e-9

// triangleBounds returns triangle i's axis-aligned min/max corners.
func triangleBounds(mesh *kernel.Mesh, i int) (geom.Point3, geom.Point3) {
	a, b, c := mesh.Triangle(i)
	pa, pb, pc := mesh.Positions[a], mesh.Positions[b], mesh.Positions[c]
	lo := pa.Vec3().Min(pb.Vec3()).Min(pc.Vec3())
	hi := pa.Vec3().Max(pb.Vec3()).Max(pc.Vec3())
	return geom.PointFromVec3(lo), geom.PointFromVec3(hi)
}

func rectFromBounds(lo, hi geom.Point3) (*rtreego.Rect, error) {
	lengths := []float64{
		maxf(hi.X-lo.X, boundsPad),
		maxf(hi.Y-lo.Y, boundsPad),
		maxf(hi.Z-lo.Z, boundsPad),
	}
	return rtreego.NewRect(rtreego.Point{lo.X, lo.Y, lo.Z}, lengths)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// buildTriangleTree bulk-inserts every triangle of mesh into an R-tree
// keyed by its axis-aligned bounding box, for broad-phase candidate-pair
// and ray queries (spec.md §4.13 step 2, step 4).
func buildTriangleTree(mesh *kernel.Mesh) (*rtreego.Rtree, error) {
	tree := rtreego.NewTree(3, 25, 50)
	for i := 0; i < mesh.TriangleCount(); i++ {
		lo, hi := triangleBounds(mesh, i)
		rect, err := rectFromBounds(lo, hi)
		if err != nil {
			return nil, err
		}
		tree.Insert(&triSpatial{idx: i, bounds: rect})
	}
	return tree, nil
}

// candidatePairs queries treeB with every triangle bbox of meshA and
// returns the (indexA, indexB) pairs whose bounding boxes overlap.
func candidatePairs(meshA *kernel.Mesh, treeB *rtreego.Rtree) [][2]int {
	var pairs [][2]int
	for i := 0; i < meshA.TriangleCount(); i++ {
		lo, hi := triangleBounds(meshA, i)
		rect, err := rectFromBounds(lo, hi)
		if err != nil {
			continue
		}
		for _, result := range treeB.SearchIntersect(rect) {
			pairs = append(pairs, [2]int{i, result.(*triSpatial).idx})
		}
	}
	return pairs
}

// rayQueryRect builds a padded bounding rect covering the ray from
// origin in direction dir out to length units, for a broad-phase
// SearchIntersect before the exact per-triangle ray test.
func rayQueryRect(origin geom.Point3, dir geom.Vec3, length float64) (*rtreego.Rect, error) {
	end := origin.Add(dir.Scale(length))
	lo := origin.Vec3().Min(end.Vec3())
	hi := origin.Vec3().Max(end.Vec3())
	return rectFromBounds(geom.PointFromVec3(lo), geom.PointFromVec3(hi))
}
