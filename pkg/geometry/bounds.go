package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BoundingBox represents an axis-aligned bounding box
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(p Vector3) {
	b.Min = Vector3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = Vector3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// Empty reports whether no point was added
func (b BoundingBox) Empty() bool {
	return b.Min.X > b.Max.X
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Sphere is a bounding volume used to frame the camera
type Sphere struct {
	Center Vector3
	Radius float64
}

// BoundingSphere returns the sphere centered on the centroid of points that
// encloses all of them, padded by margin. An empty set gives the zero sphere.
func BoundingSphere(points []Vector3, margin float64) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	center := NewVector3(stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil))

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = p.Distance(center)
	}

	return Sphere{Center: center, Radius: floats.Max(dist) + margin}
}
