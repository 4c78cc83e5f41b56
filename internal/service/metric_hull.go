package service

import "sort"

type point struct {
	x, y float64
}

// convexHullRelativeArea computes the area of the convex hull enclosing the
// peak cloud. The coordinates live in the unit square, whose area is the
// maximum attainable spread, so the hull area is already the relative value.
// A degenerate cloud (all peaks collinear or coincident) scores 0.
func convexHullRelativeArea(x, y []float64, _ MetricConfig) (float64, error) {
	pts := dedupePoints(x, y)
	if len(pts) < 3 {
		return 0, nil
	}
	hull := monotoneChain(pts)
	if len(hull) < 3 {
		return 0, nil
	}
	return polygonArea(hull), nil
}

func dedupePoints(x, y []float64) []point {
	seen := make(map[point]struct{}, len(x))
	pts := make([]point, 0, len(x))
	for i := range x {
		p := point{x: x[i], y: y[i]}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	return pts
}

// monotoneChain builds the convex hull with Andrew's monotone chain, returning
// the hull vertices in counter-clockwise order without the closing point.
func monotoneChain(pts []point) []point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x == pts[j].x {
			return pts[i].y < pts[j].y
		}
		return pts[i].x < pts[j].x
	})

	var lower []point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// cross is the z-component of (b-a) x (c-a); positive for a left turn.
func cross(a, b, c point) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// polygonArea applies the shoelace formula to a simple polygon.
func polygonArea(poly []point) float64 {
	area := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].x*poly[j].y - poly[j].x*poly[i].y
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}
