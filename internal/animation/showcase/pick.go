package showcase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avikajoshi/portfolio/backend/internal/model/project"
)

// Target is something a pointer ray can hit.
type Target struct {
	ID     int
	Center mgl64.Vec3
	Radius float64
}

// boundFactor is the bounding radius of a solid relative to its size parameter.
func boundFactor(g project.Geometry) float64 {
	if g == project.Torus {
		// ring radius plus tube radius
		return 1.3
	}
	return 1
}

// IntersectSphere returns the distance along a unit ray to the first hit on the sphere.
func IntersectSphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	root := math.Sqrt(disc)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Pick returns the id of the nearest target hit by the ray.
func Pick(origin, dir mgl64.Vec3, targets []Target) (int, bool) {
	best, bestT, hit := 0, math.Inf(1), false
	for _, tg := range targets {
		t, ok := IntersectSphere(origin, dir, tg.Center, tg.Radius)
		if ok && t < bestT {
			best, bestT, hit = tg.ID, t, true
		}
	}
	return best, hit
}
