package main

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// minRotationSpeed is the rotation-speed fraction below which a grounded
// tank is treated as driving in a straight line.
const minRotationSpeed = 0.001

// Pose is a predicted or accepted position and heading.
type Pose struct {
	X, Y, Z          float64
	Rotation         float64
	VerticalVelocity float64
}

// Extrapolate predicts where p is at now from its last accepted state.
// The validator and the hit pass both use it, so a shot is tested against
// the same pose a spectator would see.
func Extrapolate(p *Player, now time.Time, phys PhysicsConfig) Pose {
	pose := p.Pose()
	dt := now.Sub(p.LastUpdate).Seconds()
	if dt <= 0 {
		return pose
	}

	speed := p.ForwardSpeed * phys.TankSpeed
	swept := p.RotationSpeed * phys.RotationRate * dt

	switch {
	case p.JumpDirection != nil:
		// Airborne: heading keeps turning but travel stays on the lift-off heading.
		pose.Rotation += swept
		move := forwardVector(*p.JumpDirection).Mul(speed * dt)
		pose.X += move.X()
		pose.Z += move.Y()

		vy0 := p.VerticalVelocity
		vy1 := vy0 - phys.Gravity*dt
		pose.Y += (vy0 + vy1) / 2 * dt
		pose.VerticalVelocity = vy1
		if pose.Y < 0 {
			pose.Y = 0
			pose.VerticalVelocity = 0
		}

	case math.Abs(p.RotationSpeed) < minRotationSpeed:
		heading := p.Rotation
		if p.SlideDirection != nil {
			heading = *p.SlideDirection
		}
		move := forwardVector(heading).Mul(speed * dt)
		pose.X += move.X()
		pose.Z += move.Y()

	default:
		pose.X, pose.Z = arcPosition(p, speed, swept, phys)
		pose.Rotation += swept
	}
	return pose
}

// arcPosition moves a turning tank along its circle of radius |v/w|.
func arcPosition(p *Player, speed, swept float64, phys PhysicsConfig) (float64, float64) {
	side := sign(-(p.RotationSpeed * p.ForwardSpeed))
	if side == 0 {
		return p.X, p.Z
	}
	omega := p.RotationSpeed * phys.RotationRate
	radius := math.Abs(speed / omega)

	// (cos r, -sin r) is perpendicular to the forward vector.
	axis := mgl64.Vec2{math.Cos(p.Rotation), -math.Sin(p.Rotation)}
	pos := mgl64.Vec2{p.X, p.Z}
	center := pos.Add(axis.Mul(side * radius))

	// Positive swept angles turn the offset clockwise in the x/z plane.
	offset := mgl64.Rotate2D(-swept).Mul2x1(pos.Sub(center))
	next := center.Add(offset)
	return next.X(), next.Y()
}
