package main

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// ObstacleType is the shape of a static obstacle.
type ObstacleType string

const (
	ObstacleBox     ObstacleType = "box"
	ObstaclePyramid ObstacleType = "pyramid"
)

// pyramidRimSamples is the number of points sampled around a disc's rim
// when testing it against a pyramid, in addition to the center.
const pyramidRimSamples = 8

// Obstacle is a static, rotated box or pyramid. W and D are measured along
// the obstacle's local x and z axes before Rotation is applied.
type Obstacle struct {
	Name     string       `yaml:"name" json:"name" msgpack:"name"`
	X        float64      `yaml:"x" json:"x" msgpack:"x"`
	Z        float64      `yaml:"z" json:"z" msgpack:"z"`
	W        float64      `yaml:"w" json:"w" msgpack:"w"`
	D        float64      `yaml:"d" json:"d" msgpack:"d"`
	H        float64      `yaml:"h" json:"h" msgpack:"h"`
	BaseY    float64      `yaml:"base_y" json:"baseY" msgpack:"by"`
	Rotation float64      `yaml:"rotation" json:"rotation" msgpack:"r"`
	Type     ObstacleType `yaml:"type" json:"type" msgpack:"t"`
	Inverted bool         `yaml:"inverted,omitempty" json:"inverted,omitempty" msgpack:"inv,omitempty"`
}

// BoundaryObstacle is returned by collision queries when the disc leaves the map.
var BoundaryObstacle = &Obstacle{Name: "map-boundary"}

// IsBoundary reports whether o is the map-boundary sentinel.
func (o *Obstacle) IsBoundary() bool {
	return o == BoundaryObstacle
}

func (o *Obstacle) boundingRadius() float64 {
	return math.Hypot(o.W/2, o.D/2)
}

// toLocal maps a world (x, z) point into the obstacle's un-rotated frame.
func (o *Obstacle) toLocal(x, z float64) mgl64.Vec2 {
	return mgl64.Rotate2D(-o.Rotation).Mul2x1(mgl64.Vec2{x - o.X, z - o.Z})
}

// intersects tests a vertical cylinder (disc of radius at [bottom, top])
// against the obstacle.
func (o *Obstacle) intersects(x, z, radius, bottom, top float64) bool {
	local := o.toLocal(x, z)
	halfW, halfD := o.W/2, o.D/2

	if o.Type == ObstaclePyramid {
		if o.pyramidSampleHit(local, halfW, halfD, bottom, top) {
			return true
		}
		if radius <= 0 {
			return false
		}
		for i := 0; i < pyramidRimSamples; i++ {
			a := float64(i) * 2 * math.Pi / pyramidRimSamples
			p := local.Add(mgl64.Vec2{math.Cos(a), math.Sin(a)}.Mul(radius))
			if o.pyramidSampleHit(p, halfW, halfD, bottom, top) {
				return true
			}
		}
		return false
	}

	if bottom >= o.BaseY+o.H || top <= o.BaseY {
		return false
	}
	closest := mgl64.Vec2{Clamp(local.X(), -halfW, halfW), Clamp(local.Y(), -halfD, halfD)}
	d := local.Sub(closest)
	if radius <= 0 {
		return d.X() == 0 && d.Y() == 0
	}
	return d.Dot(d) < radius*radius
}

// pyramidSampleHit checks one local sample point against the sloped solid.
func (o *Obstacle) pyramidSampleHit(p mgl64.Vec2, halfW, halfD, bottom, top float64) bool {
	ax, az := math.Abs(p.X()), math.Abs(p.Y())
	if ax > halfW || az > halfD {
		return false
	}
	m := math.Max(ax/halfW, az/halfD)
	solidBottom, solidTop := o.BaseY, o.BaseY+o.H*(1-m)
	if o.Inverted {
		solidBottom, solidTop = o.BaseY+o.H*m, o.BaseY+o.H
	}
	return bottom < solidTop && top > solidBottom
}

// CheckMapBoundary returns true if a disc of the given radius at (x, z)
// extends past the edge of the square map of side mapSize.
func CheckMapBoundary(mapSize, x, z, radius float64) bool {
	half := mapSize / 2
	return math.Abs(x)+radius > half || math.Abs(z)+radius > half
}

// Geometry answers collision queries against the static map. It holds no
// mutable state after construction and is safe to call from any goroutine.
type Geometry struct {
	mapSize     float64
	epsilon     float64
	probeHeight float64
	obstacles   []Obstacle
	index       *obstacleIndex
}

// NewGeometry builds the collision engine for the given obstacle list.
func NewGeometry(phys PhysicsConfig, obstacles []Obstacle) *Geometry {
	obs := slices.Clone(obstacles)
	return &Geometry{
		mapSize:     phys.MapSize,
		epsilon:     phys.CollisionEpsilon,
		probeHeight: phys.TankHeight,
		obstacles:   obs,
		index:       newObstacleIndex(phys.MapSize, obs),
	}
}

// Obstacles returns the obstacle list in its original order.
func (g *Geometry) Obstacles() []Obstacle {
	return g.obstacles
}

// CheckCollision returns BoundaryObstacle when a tank-sized probe at
// (x, y, z) leaves the map, otherwise the first obstacle in list order it
// intersects, or nil.
func (g *Geometry) CheckCollision(x, y, z, radius float64) *Obstacle {
	return g.check(x, y, z, radius, g.probeHeight)
}

// CheckPoint is CheckCollision for a flat probe, used for projectiles.
func (g *Geometry) CheckPoint(x, y, z, radius float64) *Obstacle {
	return g.check(x, y, z, radius, 0)
}

func (g *Geometry) check(x, y, z, radius, height float64) *Obstacle {
	if CheckMapBoundary(g.mapSize, x, z, radius) {
		return BoundaryObstacle
	}
	bottom := y + g.epsilon
	top := y + height - g.epsilon

	var buf [16]int
	for _, i := range g.index.QueryBuf(x, z, radius, buf[:0]) {
		o := &g.obstacles[i]
		if o.intersects(x, z, radius, bottom, top) {
			return o
		}
	}
	return nil
}
