package main

import (
	"math"
	"time"
)

// Projectile is a horizontal shot in flight
type Projectile struct {
	ID        string
	OwnerID   int
	X, Y, Z   float64
	DirX      float64 // unit vector, x/z only
	DirZ      float64
	CreatedAt time.Time
	OriginX   float64
	OriginY   float64
	OriginZ   float64
}

// NewProjectile creates a projectile at the shooter's claimed barrel position.
// The direction is normalized; callers reject zero-length directions.
func NewProjectile(id string, ownerID int, req ShootRequest, now time.Time) *Projectile {
	l := math.Hypot(req.DirX, req.DirZ)
	return &Projectile{
		ID:        id,
		OwnerID:   ownerID,
		X:         req.X,
		Y:         req.Y,
		Z:         req.Z,
		DirX:      req.DirX / l,
		DirZ:      req.DirZ / l,
		CreatedAt: now,
		OriginX:   req.X,
		OriginY:   req.Y,
		OriginZ:   req.Z,
	}
}

// Advance moves the projectile distance units along its direction
func (p *Projectile) Advance(distance float64) {
	p.X += p.DirX * distance
	p.Z += p.DirZ * distance
}

// Traveled returns the distance from the firing point
func (p *Projectile) Traveled() float64 {
	return Distance(p.OriginX, p.OriginZ, p.X, p.Z)
}

// Age returns how long the projectile has been alive at now
func (p *Projectile) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.ID,
		Owner: p.OwnerID,
		X:     p.X,
		Y:     p.Y,
		Z:     p.Z,
		DirX:  p.DirX,
		DirZ:  p.DirZ,
	}
}
