package main

import (
	"time"
)

const (
	PlayerMaxHealth = 100
)

var playerColors = [...]string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
	"#bcf60c", "#fabebe", "#008080", "#e6beff",
}

// Player is one connected participant. Speeds are fractions of the
// configured maxima, VerticalVelocity is in units/s.
type Player struct {
	ID    int
	Name  string
	Color string

	X, Y, Z          float64
	Rotation         float64
	ForwardSpeed     float64
	RotationSpeed    float64
	VerticalVelocity float64
	SlideDirection   *float64 // heading forced by obstacle contact
	JumpDirection    *float64 // heading frozen when the tank left the ground

	Joined              bool
	Health              int
	Kills               int
	Deaths              int
	Paused              bool
	PauseCountdownStart time.Time
	DiedAt              time.Time // stamps the pending respawn

	LastUpdate time.Time // last accepted move or explicit reset
	LastShot   time.Time
	LastSeen   time.Time
}

// NewPlayer creates a connected but not yet joined player
func NewPlayer(id int, now time.Time) *Player {
	return &Player{
		ID:         id,
		Color:      playerColors[(id-1+len(playerColors))%len(playerColors)],
		LastUpdate: now,
		LastSeen:   now,
	}
}

// Alive reports whether the player can move, shoot and be hit
func (p *Player) Alive() bool {
	return p.Joined && p.Health > 0
}

// Pose returns the last accepted pose
func (p *Player) Pose() Pose {
	return Pose{
		X:                p.X,
		Y:                p.Y,
		Z:                p.Z,
		Rotation:         p.Rotation,
		VerticalVelocity: p.VerticalVelocity,
	}
}

// ResetMotion zeroes velocities and restarts extrapolation at now
func (p *Player) ResetMotion(now time.Time) {
	p.ForwardSpeed = 0
	p.RotationSpeed = 0
	p.VerticalVelocity = 0
	p.LastUpdate = now
}

// SpawnAt places the player at full health with no momentum
func (p *Player) SpawnAt(x, y, z float64, now time.Time) {
	p.X, p.Y, p.Z = x, y, z
	p.Rotation = 0
	p.SlideDirection = nil
	p.JumpDirection = nil
	p.Health = PlayerMaxHealth
	p.ResetMotion(now)
}

// ApplyMove commits an already validated move. Jump/fall bookkeeping
// happens here and nowhere else.
func (p *Player) ApplyMove(req MoveRequest, jumpThreshold float64, now time.Time) {
	prevVY := p.VerticalVelocity
	switch {
	case prevVY <= 0 && req.VerticalVelocity > jumpThreshold:
		heading := req.Rotation
		p.JumpDirection = &heading
	case p.JumpDirection != nil && req.VerticalVelocity == 0:
		p.JumpDirection = nil
	case p.JumpDirection == nil && prevVY == 0 && req.VerticalVelocity < 0:
		heading := req.Rotation
		p.JumpDirection = &heading
	}

	p.X, p.Y, p.Z = req.X, req.Y, req.Z
	p.Rotation = req.Rotation
	p.ForwardSpeed = req.ForwardSpeed
	p.RotationSpeed = req.RotationSpeed
	p.VerticalVelocity = req.VerticalVelocity
	if req.SlideDirection != nil {
		dir := *req.SlideDirection
		p.SlideDirection = &dir
	} else {
		p.SlideDirection = nil
	}
	p.LastUpdate = now
}

// TakeHit kills the player and returns false if they were already dead
func (p *Player) TakeHit() bool {
	if !p.Alive() {
		return false
	}
	p.Health = 0
	p.Deaths++
	p.ForwardSpeed = 0
	p.RotationSpeed = 0
	p.VerticalVelocity = 0
	return true
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:               p.ID,
		Name:             p.Name,
		Color:            p.Color,
		X:                p.X,
		Y:                p.Y,
		Z:                p.Z,
		Rotation:         p.Rotation,
		ForwardSpeed:     p.ForwardSpeed,
		RotationSpeed:    p.RotationSpeed,
		VerticalVelocity: p.VerticalVelocity,
		SlideDirection:   p.SlideDirection,
		Health:           p.Health,
		Kills:            p.Kills,
		Deaths:           p.Deaths,
		Paused:           p.Paused,
	}
}
