package main

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// speedEpsilon is the slack allowed on reported speed fractions.
const speedEpsilon = 1e-6

// Protocol errors. The request is dropped without a reply.
var (
	ErrMalformed = errors.New("malformed request")
	ErrNotJoined = errors.New("player not joined")
)

// Anti-cheat rejections. The sender is snapped back with a correction,
// except ErrShotCooldown which is dropped silently.
var (
	ErrPaused       = errors.New("player is paused")
	ErrDrift        = errors.New("position drift exceeds tolerance")
	ErrRotation     = errors.New("rotation drift exceeds tolerance")
	ErrOutOfBounds  = errors.New("position outside map")
	ErrCollision    = errors.New("position intersects obstacle")
	ErrShotOrigin   = errors.New("shot origin too far from shooter")
	ErrShotCooldown = errors.New("shot cooldown active")
)

// IsProtocolError reports whether err means the request should be dropped
// without answering the sender.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrNotJoined) ||
		errors.Is(err, ErrUnknownMessage)
}

// Validator checks client-reported moves and shots against the server's
// extrapolation of the last accepted state. It never mutates players.
type Validator struct {
	physics  PhysicsConfig
	shots    ShotConfig
	rules    ValidationConfig
	geometry *Geometry
}

// NewValidator creates a validator for the given configuration and map.
func NewValidator(cfg Config, geo *Geometry) *Validator {
	return &Validator{
		physics:  cfg.Physics,
		shots:    cfg.Shots,
		rules:    cfg.Validation,
		geometry: geo,
	}
}

// ValidateMove returns nil when req may be committed with Player.ApplyMove.
func (v *Validator) ValidateMove(p *Player, req MoveRequest, now time.Time) error {
	if err := v.checkMoveFields(req); err != nil {
		return err
	}
	if !p.Alive() {
		return ErrNotJoined
	}
	if p.Paused {
		return ErrPaused
	}

	predicted := Extrapolate(p, now, v.physics)

	tolerance := v.rules.DriftTolerance
	if v.velocityChanged(p, req) {
		tolerance = v.rules.VelocityChangeTolerance
	}
	if drift := Distance(predicted.X, predicted.Z, req.X, req.Z); drift > tolerance {
		return fmt.Errorf("%w: %.2f > %.2f", ErrDrift, drift, tolerance)
	}

	if diff := math.Abs(NormalizeAngle(req.Rotation - predicted.Rotation)); diff > v.rules.RotationTolerance {
		return fmt.Errorf("%w: %.3f rad", ErrRotation, diff)
	}

	if CheckMapBoundary(v.physics.MapSize, req.X, req.Z, v.physics.TankRadius) {
		return ErrOutOfBounds
	}
	if o := v.geometry.CheckCollision(req.X, req.Y, req.Z, v.physics.TankRadius); o != nil {
		return fmt.Errorf("%w: %s", ErrCollision, o.Name)
	}
	return nil
}

func (v *Validator) checkMoveFields(req MoveRequest) error {
	if !finite(req.X, req.Y, req.Z, req.Rotation, req.ForwardSpeed, req.RotationSpeed,
		req.VerticalVelocity, req.DeltaTime) {
		return fmt.Errorf("%w: non-finite move field", ErrMalformed)
	}
	if req.SlideDirection != nil && !finite(*req.SlideDirection) {
		return fmt.Errorf("%w: non-finite slide direction", ErrMalformed)
	}
	if math.Abs(req.ForwardSpeed) > 1+speedEpsilon || math.Abs(req.RotationSpeed) > 1+speedEpsilon {
		return fmt.Errorf("%w: speed fraction out of range", ErrMalformed)
	}
	// Nothing but a jump pushes a tank upward.
	if req.VerticalVelocity > v.physics.JumpVelocity+speedEpsilon {
		return fmt.Errorf("%w: vertical velocity %.2f above jump impulse", ErrMalformed, req.VerticalVelocity)
	}
	if req.DeltaTime < 0 || req.DeltaTime > v.rules.MaxDeltaTime {
		return fmt.Errorf("%w: deltaTime %.3f out of range", ErrMalformed, req.DeltaTime)
	}
	return nil
}

// velocityChanged reports whether the client changed any velocity since the
// last accepted move, which extrapolation cannot anticipate.
func (v *Validator) velocityChanged(p *Player, req MoveRequest) bool {
	eps := v.rules.VelocityChangeEpsilon
	return math.Abs(req.ForwardSpeed-p.ForwardSpeed) > eps ||
		math.Abs(req.RotationSpeed-p.RotationSpeed) > eps ||
		math.Abs(req.VerticalVelocity-p.VerticalVelocity) > eps
}

// ValidateShot returns nil when a projectile may be created for req.
func (v *Validator) ValidateShot(p *Player, req ShootRequest, now time.Time) error {
	if !finite(req.X, req.Y, req.Z, req.DirX, req.DirZ) {
		return fmt.Errorf("%w: non-finite shot field", ErrMalformed)
	}
	if math.Hypot(req.DirX, req.DirZ) == 0 {
		return fmt.Errorf("%w: zero shot direction", ErrMalformed)
	}
	if !p.Alive() {
		return ErrNotJoined
	}
	if p.Paused {
		return ErrPaused
	}

	pos := Extrapolate(p, now, v.physics)
	dx, dy, dz := req.X-pos.X, req.Y-pos.Y, req.Z-pos.Z
	limit := v.shots.BarrelLength + v.rules.ShotOriginTolerance
	if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > limit {
		return fmt.Errorf("%w: %.2f > %.2f", ErrShotOrigin, d, limit)
	}

	if !p.LastShot.IsZero() && now.Sub(p.LastShot) < v.shots.Cooldown {
		return ErrShotCooldown
	}
	return nil
}
