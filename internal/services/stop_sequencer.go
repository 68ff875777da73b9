package services

import (
	"math"

	"consolidation-route-service/internal/domain"
)

// SequenceStops orders points with a greedy nearest-neighbor walk over
// great-circle distance, starting from points[0]. It returns original indices
// in visiting order.
//
// Fewer than three points are returned in input order. Ties go to the lowest
// original index. The last point is not pinned to the end of the route.
func SequenceStops(points []domain.Point) []int {
	n := len(points)
	order := make([]int, 0, n)

	if n < 3 {
		for i := 0; i < n; i++ {
			order = append(order, i)
		}
		return order
	}

	visited := make([]bool, n)
	current := 0
	visited[0] = true
	order = append(order, 0)

	for len(order) < n {
		best := -1
		bestDist := math.Inf(1)

		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			// Strict comparison keeps the lowest index on ties.
			if d := domain.DistanceMeters(points[current], points[i]); d < bestDist {
				best = i
				bestDist = d
			}
		}

		// NaN distances never compare; fall back to the first unvisited point.
		if best == -1 {
			for i := 0; i < n; i++ {
				if !visited[i] {
					best = i
					break
				}
			}
		}

		visited[best] = true
		order = append(order, best)
		current = best
	}

	return order
}
