package main

import (
	"math"
	"slices"
)

const ObstacleCellSize = 10.0

// obstacleIndex is a fixed uniform grid over the map used as a broad phase
// for obstacle queries. It is built once and never mutated afterwards.
type obstacleIndex struct {
	cellSize float64
	half     float64
	cols     int
	cells    [][]int // obstacle list indices per cell
}

func newObstacleIndex(mapSize float64, obstacles []Obstacle) *obstacleIndex {
	cols := int(math.Ceil(mapSize/ObstacleCellSize)) + 1
	ix := &obstacleIndex{
		cellSize: ObstacleCellSize,
		half:     mapSize / 2,
		cols:     cols,
		cells:    make([][]int, cols*cols),
	}
	for i, o := range obstacles {
		ix.insertCircle(o.X, o.Z, o.boundingRadius(), i)
	}
	return ix
}

func (ix *obstacleIndex) cellRange(x, z, radius float64) (minCX, maxCX, minCZ, maxCZ int) {
	minCX = ix.clampCell(int(math.Floor((x - radius + ix.half) / ix.cellSize)))
	maxCX = ix.clampCell(int(math.Floor((x + radius + ix.half) / ix.cellSize)))
	minCZ = ix.clampCell(int(math.Floor((z - radius + ix.half) / ix.cellSize)))
	maxCZ = ix.clampCell(int(math.Floor((z + radius + ix.half) / ix.cellSize)))
	return
}

func (ix *obstacleIndex) clampCell(c int) int {
	if c < 0 {
		return 0
	}
	if c >= ix.cols {
		return ix.cols - 1
	}
	return c
}

// insertCircle adds an obstacle to all cells overlapping its bounding box
func (ix *obstacleIndex) insertCircle(x, z, radius float64, idx int) {
	minCX, maxCX, minCZ, maxCZ := ix.cellRange(x, z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			cell := cz*ix.cols + cx
			ix.cells[cell] = append(ix.cells[cell], idx)
		}
	}
}

// QueryBuf appends the indices of obstacles near the disc to buf, sorted
// ascending and without duplicates, so callers keep list order.
func (ix *obstacleIndex) QueryBuf(x, z, radius float64, buf []int) []int {
	start := len(buf)
	minCX, maxCX, minCZ, maxCZ := ix.cellRange(x, z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, ix.cells[cz*ix.cols+cx]...)
		}
	}
	found := buf[start:]
	slices.Sort(found)
	found = slices.Compact(found)
	return buf[:start+len(found)]
}
