package main

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
	closed   bool
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// of returns the envelopes of the given type, in order
func (m *mockBroadcaster) of(kind string) []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Envelope
	for _, msg := range m.messages {
		if env, ok := msg.(Envelope); ok && env.T == kind {
			out = append(out, env)
		}
	}
	return out
}

func (m *mockBroadcaster) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWorld(t *testing.T, mutate func(*Config)) (*World, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	w := NewWorld(cfg, discardLogger())
	clock := &fakeClock{t: epoch}
	w.now = clock.Now
	w.rng = rand.New(rand.NewPCG(1, 2))
	return w, clock
}

func joinPlayer(w *World, name string) (int, *mockBroadcaster) {
	c := &mockBroadcaster{}
	id := w.Connect(c)
	w.Handle(id, JoinRequest{Name: name})
	return id, c
}

// place puts a joined player at rest at (x, 0, z)
func place(w *World, id int, x, z float64) *Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.players[id]
	p.SpawnAt(x, 0, z, w.now())
	return p
}

func tickFor(w *World, clock *fakeClock, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(w.cfg.Game.TickDuration())
		w.Tick(clock.Now())
	}
}

func TestWorldConnectAssignsLowestFreeID(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	clients := make([]*mockBroadcaster, 3)
	for i := range clients {
		clients[i] = &mockBroadcaster{}
		assert.Equal(t, i+1, w.Connect(clients[i]))
	}

	w.Disconnect(2, clients[1])
	assert.Equal(t, 2, w.Connect(&mockBroadcaster{}))
	assert.Equal(t, 4, w.Connect(&mockBroadcaster{}))
	assert.Equal(t, 4, w.PlayerCount())

	state, ok := w.Player(1)
	require.True(t, ok)
	assert.Equal(t, 0, state.Health, "connected but not joined")
}

func TestWorldInitSnapshot(t *testing.T) {
	w, _ := newTestWorld(t, func(c *Config) {
		c.Obstacles = []Obstacle{{Name: "crate", X: 10, Z: 10, W: 2, D: 2, H: 2, Type: ObstacleBox}}
	})
	joinPlayer(w, "Ace")

	c := &mockBroadcaster{}
	id := w.Connect(c)
	require.Len(t, c.binary, 1)

	snap, err := DecodeInit(c.binary[0])
	require.NoError(t, err)
	assert.Equal(t, id, snap.SelfID)
	assert.Equal(t, 100.0, snap.MapSize)
	require.Len(t, snap.Players, 1, "only joined players are listed")
	assert.Equal(t, "Ace", snap.Players[0].Name)
	require.Len(t, snap.Obstacles, 1)
	assert.Equal(t, "crate", snap.Obstacles[0].Name)
}

func TestWorldJoin(t *testing.T) {
	w, _ := newTestWorld(t, func(c *Config) { c.Game.MaxNameLen = 8 })
	watcher := &mockBroadcaster{}
	w.Connect(watcher)

	id, c := joinPlayer(w, "  Ace  ")
	joined := c.of(MsgPlayerJoined)
	require.Len(t, joined, 1, "joiner sees its own spawn")
	assert.Len(t, watcher.of(MsgPlayerJoined), 1)

	state := joined[0].Data.(PlayerState)
	assert.Equal(t, id, state.ID)
	assert.Equal(t, "Ace", state.Name)
	assert.Equal(t, PlayerMaxHealth, state.Health)

	w.Handle(id, JoinRequest{Name: "Again"})
	assert.Len(t, c.of(MsgPlayerJoined), 1, "second join is ignored")

	id2, _ := joinPlayer(w, "ace")
	s2, _ := w.Player(id2)
	assert.Equal(t, "ace 2", s2.Name)

	id3, _ := joinPlayer(w, "")
	s3, _ := w.Player(id3)
	assert.Equal(t, "Player 4", s3.Name)

	id4, _ := joinPlayer(w, "Commander\x07Shepard")
	s4, _ := w.Player(id4)
	assert.Equal(t, "Commande", s4.Name)
}

func TestWorldDisconnect(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")

	// A stale disconnect for a reused id is ignored.
	w.Disconnect(a, &mockBroadcaster{})
	assert.Equal(t, 2, w.PlayerCount())

	w.Disconnect(a, ca)
	w.Disconnect(a, ca)
	assert.Equal(t, 1, w.PlayerCount())
	left := cb.of(MsgPlayerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, PlayerRefMsg{ID: a}, left[0].Data)

	// Never-joined connections leave silently.
	cb.reset()
	lurker := &mockBroadcaster{}
	id := w.Connect(lurker)
	w.Disconnect(id, lurker)
	assert.Empty(t, cb.of(MsgPlayerLeft))
}

func TestWorldMoveAccepted(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)

	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{X: 0.2, Z: 0.3, DeltaTime: 0.016})

	state, _ := w.Player(a)
	assert.Equal(t, 0.2, state.X)
	assert.Equal(t, 0.3, state.Z)
	assert.Equal(t, clock.Now(), w.players[a].LastUpdate)

	moved := cb.of(MsgPlayerMoved)
	require.Len(t, moved, 1)
	assert.Equal(t, a, moved[0].Data.(PlayerState).ID)
	assert.Empty(t, ca.of(MsgPlayerMoved), "sender is not echoed")
	assert.Empty(t, ca.of(MsgCorrection))
}

func TestWorldMoveRejected(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	p := place(w, a, 0, 0)
	p.ForwardSpeed, p.RotationSpeed = 0.5, 0.2
	p.Rotation = 0.4

	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{X: 50, Z: 50, ForwardSpeed: 1, DeltaTime: 0.016})

	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Z)
	assert.Equal(t, 0.4, p.Rotation)
	assert.Zero(t, p.ForwardSpeed)
	assert.Zero(t, p.RotationSpeed)
	assert.Zero(t, p.VerticalVelocity)
	assert.Equal(t, clock.Now(), p.LastUpdate)

	corr := ca.of(MsgCorrection)
	require.Len(t, corr, 1)
	got := corr[0].Data.(PlayerState)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 0.4, got.Rotation)
	assert.Empty(t, cb.of(MsgPlayerMoved))
	assert.Empty(t, cb.of(MsgCorrection), "corrections are unicast")
}

func TestWorldMoveRejectionDoesNotStartJump(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, _ := joinPlayer(w, "A")
	p := place(w, a, 0, 0)

	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{X: 40, VerticalVelocity: 8, DeltaTime: 0.016})
	assert.Nil(t, p.JumpDirection)

	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{VerticalVelocity: 8, Rotation: 0.1, DeltaTime: 0.016})
	require.NotNil(t, p.JumpDirection)
	assert.Equal(t, 0.1, *p.JumpDirection)
}

func TestWorldLastUpdateMonotonic(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, _ := joinPlayer(w, "A")
	p := place(w, a, 0, 0)

	moves := []MoveRequest{
		{X: 0.1, DeltaTime: 0.016},
		{X: 30, DeltaTime: 0.016},              // drift
		{X: 0.1, ForwardSpeed: 3, DeltaTime: 0}, // malformed, dropped
		{X: 0.2, ForwardSpeed: 0.5, DeltaTime: 0.016},
		{X: 0.2, Rotation: 2, DeltaTime: 0.016}, // rotation
		{X: 0.1, Z: -0.3, DeltaTime: 0.016},
	}
	prev := p.LastUpdate
	for i, m := range moves {
		clock.Advance(16 * time.Millisecond)
		w.Handle(a, m)
		assert.False(t, p.LastUpdate.Before(prev), "move %d", i)
		if i == 2 {
			assert.Equal(t, prev, p.LastUpdate, "dropped move must not touch lastUpdate")
		}
		prev = p.LastUpdate
	}
}

func TestWorldMalformedMoveIsDropped(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	p := place(w, a, 0, 0)
	p.ForwardSpeed = 0.5
	before := *p
	ca.reset()

	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{X: 0.1, ForwardSpeed: 5, DeltaTime: 0.016})

	before.LastSeen = p.LastSeen
	assert.Equal(t, before, *p)
	assert.Empty(t, ca.messages)
	assert.Empty(t, cb.of(MsgPlayerMoved))
}

func TestWorldShoot(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)

	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	created := cb.of(MsgProjectileCreated)
	require.Len(t, created, 1)
	assert.Len(t, ca.of(MsgProjectileCreated), 1, "shooter sees its projectile too")
	assert.Equal(t, "1", created[0].Data.(ProjectileState).ID)
	assert.Equal(t, clock.Now(), w.players[a].LastShot)

	// Inside the cooldown: silently dropped.
	clock.Advance(100 * time.Millisecond)
	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	assert.Len(t, cb.of(MsgProjectileCreated), 1)
	assert.Empty(t, ca.of(MsgCorrection))

	// Origin far from the tank: correction to the shooter only.
	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{X: 10, Y: 0, Z: 10, DirZ: -1})
	assert.Len(t, cb.of(MsgProjectileCreated), 1)
	assert.Len(t, ca.of(MsgCorrection), 1)
	assert.Empty(t, cb.of(MsgCorrection))
	assert.Equal(t, 1, w.Status().Projectiles)
}

func TestWorldProjectileCap(t *testing.T) {
	w, clock := newTestWorld(t, func(c *Config) { c.Shots.MaxLive = 1 })
	a, _ := joinPlayer(w, "A")
	place(w, a, 0, 0)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	assert.Equal(t, 1, w.Status().Projectiles)
}

func TestWorldProjectileDistanceRemoval(t *testing.T) {
	w, clock := newTestWorld(t, func(c *Config) {
		c.Shots.Speed = 30 // 0.5 per tick at 60 Hz
		c.Shots.Distance = 10
	})
	a, ca := joinPlayer(w, "A")
	place(w, a, 0, 0)
	w.Handle(a, ShootRequest{X: 2, Y: 1, Z: 0, DirX: 1})
	require.Equal(t, 1, w.Status().Projectiles)

	tickFor(w, clock, 20)
	assert.Equal(t, 1, w.Status().Projectiles, "exactly at the limit is still alive")
	assert.Empty(t, ca.of(MsgProjectileRemoved))

	tickFor(w, clock, 1)
	assert.Equal(t, 0, w.Status().Projectiles)
	removed := ca.of(MsgProjectileRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, ProjectileRemovedMsg{ID: "1", Reason: "distance"}, removed[0].Data)

	tickFor(w, clock, 30)
	assert.Len(t, ca.of(MsgProjectileRemoved), 1, "a removed projectile is never resolved again")
}

func TestWorldProjectileRemovalReasons(t *testing.T) {
	w, clock := newTestWorld(t, func(c *Config) {
		c.Obstacles = []Obstacle{{Name: "wall", X: 0, Z: -10, W: 10, D: 1, H: 3, Type: ObstacleBox}}
		c.Shots.MaxAge = 200 * time.Millisecond
	})
	a, ca := joinPlayer(w, "A")
	place(w, a, 0, 0)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 11)
	removed := ca.of(MsgProjectileRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, "obstacle", removed[0].Data.(ProjectileRemovedMsg).Reason)

	// Over the wall: nothing to hit, so it ages out.
	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{Y: 4, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 13)
	removed = ca.of(MsgProjectileRemoved)
	require.Len(t, removed, 2)
	assert.Equal(t, "age", removed[1].Data.(ProjectileRemovedMsg).Reason)
}

func TestWorldProjectileLeavesMap(t *testing.T) {
	w, clock := newTestWorld(t, func(c *Config) { c.Shots.Distance = 500 })
	a, ca := joinPlayer(w, "A")
	place(w, a, 45, 0)

	w.Handle(a, ShootRequest{X: 47, Y: 1, DirX: 1})
	tickFor(w, clock, 10)
	removed := ca.of(MsgProjectileRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, "bounds", removed[0].Data.(ProjectileRemovedMsg).Reason)
}

func TestWorldHitAndRespawn(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)
	victim := place(w, b, 0, -8)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 10)

	hits := cb.of(MsgPlayerHit)
	require.Len(t, hits, 1)
	assert.Equal(t, PlayerHitMsg{ProjectileID: "1", ShooterID: a, VictimID: b, ShooterKills: 1, VictimDeaths: 1}, hits[0].Data)
	assert.Len(t, ca.of(MsgPlayerHit), 1)
	assert.Empty(t, ca.of(MsgProjectileRemoved), "a hit projectile is not also removed")
	assert.Equal(t, 0, victim.Health)
	assert.Equal(t, 0, w.Status().Projectiles)
	assert.Equal(t, 1, w.scheduler.Len())

	// Dead players cannot move.
	w.Handle(b, MoveRequest{Z: -8, DeltaTime: 0.016})
	assert.Empty(t, cb.of(MsgCorrection))

	clock.Advance(w.cfg.Game.RespawnDelay)
	w.Tick(clock.Now())
	respawned := ca.of(MsgPlayerRespawned)
	require.Len(t, respawned, 1)
	state := respawned[0].Data.(PlayerState)
	assert.Equal(t, b, state.ID)
	assert.Equal(t, PlayerMaxHealth, state.Health)
	assert.Equal(t, 1, state.Deaths)
	assert.Equal(t, clock.Now(), victim.LastUpdate)
	assert.Nil(t, w.geometry.CheckCollision(state.X, 0, state.Z, w.cfg.Physics.TankRadius))
}

func TestWorldHitUsesExtrapolatedPose(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, _ := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)
	victim := place(w, b, 10, -10)
	victim.Rotation = -math.Pi / 2 // facing +x
	victim.ForwardSpeed = -1       // reversing toward -x at 10 u/s

	// Stored pose is 10 units off the line of fire; after 1s it is on it.
	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 6)
	assert.Len(t, cb.of(MsgPlayerHit), 0, "not yet in range")
	tickFor(w, clock, 6)
	assert.Len(t, cb.of(MsgPlayerHit), 1)
}

func TestWorldHitSkipsPausedAndDead(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, _ := joinPlayer(w, "B")
	place(w, a, 0, 0)
	victim := place(w, b, 0, -8)
	victim.Paused = true

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 15)
	assert.Empty(t, ca.of(MsgPlayerHit), "paused players are not hit")

	victim.Paused = false
	victim.Health = 0
	clock.Advance(time.Second)
	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 15)
	assert.Empty(t, ca.of(MsgPlayerHit), "dead players are not hit")
}

func TestWorldHitOncePerVictim(t *testing.T) {
	w, clock := newTestWorld(t, func(c *Config) { c.Shots.Cooldown = 0 })
	a, ca := joinPlayer(w, "A")
	b, _ := joinPlayer(w, "B")
	place(w, a, 0, 0)
	victim := place(w, b, 0, -8)

	w.Handle(a, ShootRequest{X: -0.5, Y: 1, Z: -2.5, DirZ: -1})
	w.Handle(a, ShootRequest{X: 0.5, Y: 1, Z: -2.5, DirZ: -1})
	require.Equal(t, 2, w.Status().Projectiles)

	tickFor(w, clock, 8)
	assert.Len(t, ca.of(MsgPlayerHit), 1)
	assert.Equal(t, 1, victim.Deaths)
	assert.Equal(t, 1, w.Status().Projectiles, "the second projectile flies on")
}

func TestWorldRespawnSkippedAfterDisconnect(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)
	place(w, b, 0, -8)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 10)
	require.Len(t, ca.of(MsgPlayerHit), 1)

	w.Disconnect(b, cb)
	clock.Advance(w.cfg.Game.RespawnDelay)
	w.Tick(clock.Now())
	assert.Empty(t, ca.of(MsgPlayerRespawned))
	assert.Zero(t, w.scheduler.Len())
}

func TestWorldRespawnNotInheritedByReusedID(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)
	place(w, b, 0, -8)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 10)
	require.Len(t, ca.of(MsgPlayerHit), 1)
	w.Disconnect(b, cb)

	clock.Advance(2 * time.Second)
	c, _ := joinPlayer(w, "C")
	require.Equal(t, b, c, "lowest free id is reused")
	victim := place(w, c, 0, -8)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	tickFor(w, clock, 10)
	require.Len(t, ca.of(MsgPlayerHit), 2)
	diedAt := victim.DiedAt

	// B's respawn is now due, C's is not.
	clock.Advance(time.Second)
	w.Tick(clock.Now())
	assert.Equal(t, 0, victim.Health)
	assert.Empty(t, ca.of(MsgPlayerRespawned))

	clock.t = diedAt.Add(w.cfg.Game.RespawnDelay)
	w.Tick(clock.Now())
	assert.Equal(t, PlayerMaxHealth, victim.Health)
	assert.Len(t, ca.of(MsgPlayerRespawned), 1)
}

func TestWorldShooterLeavesBeforeHit(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")
	place(w, a, 0, 0)
	place(w, b, 0, -8)

	w.Handle(a, ShootRequest{Y: 1, Z: -2.5, DirZ: -1})
	w.Disconnect(a, ca)
	tickFor(w, clock, 10)

	hits := cb.of(MsgPlayerHit)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Data.(PlayerHitMsg).ShooterKills)
}

func TestWorldPauseCountdown(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	p := place(w, a, 0, 0)
	p.ForwardSpeed = 1

	w.Handle(a, PauseRequest{})
	countdown := cb.of(MsgPauseCountdown)
	require.Len(t, countdown, 1)
	assert.Equal(t, PauseCountdownMsg{ID: a, Seconds: 3}, countdown[0].Data)

	tickFor(w, clock, 60)
	assert.False(t, p.Paused, "still counting down")

	clock.Advance(3 * time.Second)
	w.Tick(clock.Now())
	assert.True(t, p.Paused)
	assert.Zero(t, p.ForwardSpeed)
	assert.Len(t, cb.of(MsgPaused), 1)

	// Paused players are corrected, not moved.
	clock.Advance(16 * time.Millisecond)
	w.Handle(a, MoveRequest{X: 0.1, DeltaTime: 0.016})
	assert.Len(t, ca.of(MsgCorrection), 1)
	assert.Equal(t, 0.0, p.X)

	w.Handle(a, PauseRequest{})
	assert.False(t, p.Paused)
	assert.Len(t, cb.of(MsgUnpaused), 1)
}

func TestWorldPauseCountdownCancelled(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, _ := joinPlayer(w, "A")
	_, cb := joinPlayer(w, "B")
	p := place(w, a, 0, 0)

	w.Handle(a, PauseRequest{})
	clock.Advance(time.Second)
	w.Handle(a, PauseRequest{}) // cancel
	assert.Len(t, cb.of(MsgUnpaused), 1)

	clock.Advance(time.Second)
	w.Handle(a, PauseRequest{}) // restart at +2s

	clock.Advance(time.Second) // +3s: the first countdown's event is stale
	w.Tick(clock.Now())
	assert.False(t, p.Paused)

	clock.Advance(2 * time.Second) // +5s: the second one completes
	w.Tick(clock.Now())
	assert.True(t, p.Paused)
	assert.Len(t, cb.of(MsgPaused), 1)
}

func TestWorldLivenessSweep(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	a, ca := joinPlayer(w, "A")
	b, cb := joinPlayer(w, "B")

	clock.Advance(20 * time.Second)
	w.Heartbeat(b)
	clock.Advance(15 * time.Second)
	w.Tick(clock.Now())

	assert.True(t, ca.closed)
	assert.False(t, cb.closed)
	_, ok := w.Player(a)
	assert.False(t, ok)
	_, ok = w.Player(b)
	assert.True(t, ok)
	assert.Len(t, cb.of(MsgPlayerLeft), 1)

	// The read pump's later disconnect is a no-op.
	w.Disconnect(a, ca)
	assert.Len(t, cb.of(MsgPlayerLeft), 1)
}

func TestWorldStatus(t *testing.T) {
	w, clock := newTestWorld(t, nil)
	joinPlayer(w, "A")
	w.Connect(&mockBroadcaster{})
	tickFor(w, clock, 3)

	assert.Equal(t, StatusInfo{Players: 2, Joined: 1, Tick: 3}, w.Status())
}
