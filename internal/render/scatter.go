// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"math"
	"strings"

	"github.com/pdiddy/trendscope/pkg/types"
)

// markers label clusters by id modulo len(markers); noise points use '.'.
const markers = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Scatter plots points on a width×height character grid. Each cell shows
// the cluster of the last point landing in it; cells with points from
// several clusters show '*'.
func Scatter(points []types.UMAPPoint, width, height int) string {
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			continue
		}
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, pt := range points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
			continue
		}
		col := scale(pt.X, minX, maxX, width)
		row := height - 1 - scale(pt.Y, minY, maxY, height)
		m := Marker(pt.ClusterID)
		switch cur := grid[row][col]; {
		case cur == ' ' || cur == m:
			grid[row][col] = m
		default:
			grid[row][col] = '*'
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Marker is the plot character for a cluster id.
func Marker(clusterID *int64) rune {
	if clusterID == nil || *clusterID < 0 {
		return '.'
	}
	return rune(markers[*clusterID%int64(len(markers))])
}

func scale(v, lo, hi float64, n int) int {
	if hi <= lo {
		return n / 2
	}
	i := int((v - lo) / (hi - lo) * float64(n-1))
	return min(max(i, 0), n-1)
}
