// Package render implements the scene graph, camera, sprite batching,
// post-process chain, and frame orchestration (spec.md §4.7, §9 "scene
// traversal via downcasts").
package render

import "math"

// Affine is a 2D affine transform [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity affine transform.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// Local computes n's local affine matrix from its transform properties:
// Translate(-Pivot) -> Scale -> Skew -> Rotate -> Translate(X, Y).
func Local(n *Node) Affine {
	sx, sy := n.ScaleX, n.ScaleY
	sin, cos := math.Sincos(n.Rotation)

	var tanSkewX, tanSkewY float64
	if n.SkewX != 0 {
		tanSkewX = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		tanSkewY = math.Tan(n.SkewY)
	}

	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	preTx := -n.PivotX*sx - tanSkewX*n.PivotY*sy
	preTy := -tanSkewY*n.PivotX*sx - n.PivotY*sy

	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return Affine{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// Multiply composes parent and child affine transforms: result = parent * child.
func Multiply(p, c Affine) Affine {
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// Invert returns m's inverse, or Identity if m is singular.
func Invert(m Affine) Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// TransformPoint applies m to (x, y).
func TransformPoint(m Affine, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// UpdateWorldTransforms walks the scene top-down from root, recomputing
// each node's world transform as parent.world × local whenever the node
// or an ancestor is dirty (spec.md §4.6 step 1 "Update transforms
// top-down").
func UpdateWorldTransforms(root *Node) {
	updateWorldTransform(root, Identity, 1, false)
}

func updateWorldTransform(n *Node, parentTransform Affine, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = Multiply(parentTransform, Local(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
		if n.Type == NodeTilemap && n.Tilemap != nil {
			n.Tilemap.OnWorldTransformChanged(n.worldTransform)
		}
	}
	for _, child := range n.Children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// WorldAABB computes the axis-aligned bounding box of a w×h rectangle
// transformed by m.
func WorldAABB(m Affine, w, h float64) AABB {
	a, b, c, d, tx, ty := m[0], m[1], m[2], m[3], m[4], m[5]
	x0, y0 := tx, ty
	x1, y1 := a*w+tx, b*w+ty
	x2, y2 := a*w+c*h+tx, b*w+d*h+ty
	x3, y3 := c*h+tx, d*h+ty

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return AABB{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}
