package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin  = "join"
	MsgMove  = "move"
	MsgShoot = "shoot"
	MsgPause = "pause"
)

// Server -> Client message types
const (
	MsgInit              = "init" // full state, sent as a msgpack binary frame
	MsgPlayerJoined      = "player_joined"
	MsgPlayerLeft        = "player_left"
	MsgPlayerMoved       = "move"
	MsgCorrection        = "correction" // unicast to the rejected sender only
	MsgProjectileCreated = "projectile_created"
	MsgProjectileRemoved = "projectile_removed"
	MsgPlayerHit         = "player_hit"
	MsgPlayerRespawned   = "player_respawned"
	MsgPauseCountdown    = "pause_countdown"
	MsgPaused            = "paused"
	MsgUnpaused          = "unpaused"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D stays raw until the type is known
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Request is the closed set of inbound requests. Only types in this file
// implement it.
type Request interface {
	isRequest()
}

// JoinRequest asks to enter the arena. Name is optional.
type JoinRequest struct {
	Name string `json:"name,omitempty"`
}

// MoveRequest is a client-reported pose. Speeds are fractions of the
// configured maxima; VerticalVelocity is in units/s.
type MoveRequest struct {
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Z                float64  `json:"z"`
	Rotation         float64  `json:"rotation"`
	ForwardSpeed     float64  `json:"forwardSpeed"`
	RotationSpeed    float64  `json:"rotationSpeed"`
	VerticalVelocity float64  `json:"verticalVelocity"`
	DeltaTime        float64  `json:"deltaTime"`
	SlideDirection   *float64 `json:"slideDirection,omitempty"`
}

// ShootRequest carries the claimed barrel position and a horizontal direction.
type ShootRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	DirX float64 `json:"dx"`
	DirZ float64 `json:"dz"`
}

// PauseRequest toggles pause for the sender.
type PauseRequest struct{}

func (JoinRequest) isRequest()  {}
func (MoveRequest) isRequest()  {}
func (ShootRequest) isRequest() {}
func (PauseRequest) isRequest() {}

// PlayerState is the wire form of a player
type PlayerState struct {
	ID               int      `json:"id" msgpack:"id"`
	Name             string   `json:"n" msgpack:"n"`
	Color            string   `json:"c" msgpack:"c"`
	X                float64  `json:"x" msgpack:"x"`
	Y                float64  `json:"y" msgpack:"y"`
	Z                float64  `json:"z" msgpack:"z"`
	Rotation         float64  `json:"r" msgpack:"r"`
	ForwardSpeed     float64  `json:"fs" msgpack:"fs"`
	RotationSpeed    float64  `json:"rs" msgpack:"rs"`
	VerticalVelocity float64  `json:"vy" msgpack:"vy"`
	SlideDirection   *float64 `json:"sd,omitempty" msgpack:"sd,omitempty"`
	Health           int      `json:"hp" msgpack:"hp"`
	Kills            int      `json:"k" msgpack:"k"`
	Deaths           int      `json:"dt" msgpack:"dt"`
	Paused           bool     `json:"p,omitempty" msgpack:"p,omitempty"`
}

// ProjectileState is the wire form of a projectile
type ProjectileState struct {
	ID    string  `json:"id" msgpack:"id"`
	Owner int     `json:"o" msgpack:"o"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Z     float64 `json:"z" msgpack:"z"`
	DirX  float64 `json:"dx" msgpack:"dx"`
	DirZ  float64 `json:"dz" msgpack:"dz"`
}

// InitMsg is the full state sent to a connection right after it opens
type InitMsg struct {
	SelfID      int               `msgpack:"self"`
	MapSize     float64           `msgpack:"map"`
	Tick        uint64            `msgpack:"tick"`
	Players     []PlayerState     `msgpack:"p"`
	Projectiles []ProjectileState `msgpack:"pr"`
	Obstacles   []Obstacle        `msgpack:"ob"`
}

// PlayerRefMsg identifies a player for left/paused/unpaused events
type PlayerRefMsg struct {
	ID int `json:"id"`
}

// ProjectileRemovedMsg reports why a projectile left the world
type ProjectileRemovedMsg struct {
	ID     string `json:"id"`
	Reason string `json:"why"`
}

// PlayerHitMsg is broadcast when a projectile strikes a player
type PlayerHitMsg struct {
	ProjectileID string `json:"pid"`
	ShooterID    int    `json:"sid"`
	VictimID     int    `json:"vid"`
	ShooterKills int    `json:"sk"`
	VictimDeaths int    `json:"vd"`
}

// PauseCountdownMsg announces that a player will be paused after Seconds
type PauseCountdownMsg struct {
	ID      int     `json:"id"`
	Seconds float64 `json:"s"`
}

// StatusInfo is served on /status
type StatusInfo struct {
	Connections int    `json:"connections"`
	Players     int    `json:"players"`
	Joined      int    `json:"joined"`
	Projectiles int    `json:"projectiles"`
	Tick        uint64 `json:"tick"`
}
