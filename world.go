package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// livenessSweepEvery is how often the tick looks for silent connections.
const livenessSweepEvery = time.Second

// Broadcaster is the world's view of one connection
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
	Close()
}

// World is the single authoritative arena. Every exported method takes
// the mutex for its whole duration, so ticks and handlers never overlap.
type World struct {
	mu          sync.Mutex
	cfg         Config
	geometry    *Geometry
	validator   *Validator
	scheduler   Scheduler
	players     map[int]*Player
	projectiles map[string]*Projectile
	clients     map[int]Broadcaster

	nextProjectileID uint64
	tick             uint64
	lastSweep        time.Time

	rng *rand.Rand
	now func() time.Time
	log *slog.Logger
}

// NewWorld creates a world for cfg. The obstacle list is copied.
func NewWorld(cfg Config, logger *slog.Logger) *World {
	geo := NewGeometry(cfg.Physics, cfg.Obstacles)
	seed := uint64(time.Now().UnixNano())
	return &World{
		cfg:         cfg,
		geometry:    geo,
		validator:   NewValidator(cfg, geo),
		players:     make(map[int]*Player),
		projectiles: make(map[string]*Projectile),
		clients:     make(map[int]Broadcaster),
		rng:         rand.New(rand.NewPCG(seed, seed>>1)),
		now:         time.Now,
		log:         logger.With(slog.String("component", "world")),
	}
}

// Run ticks the world at the configured rate until ctx is cancelled
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Game.TickDuration())
	defer ticker.Stop()

	w.log.Info("simulation started", slog.Int("tick_rate", w.cfg.Game.TickRate),
		slog.Int("obstacles", len(w.geometry.Obstacles())))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("simulation stopped", slog.Uint64("ticks", w.Status().Tick))
			return nil
		case <-ticker.C:
			w.Tick(w.now())
		}
	}
}

// Connect registers a new connection and sends it the full state.
// The returned id is the lowest one not in use.
func (w *World) Connect(client Broadcaster) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	id := 1
	for w.players[id] != nil {
		id++
	}
	w.players[id] = NewPlayer(id, now)
	w.clients[id] = client

	data, err := EncodeInit(w.snapshot(id))
	if err != nil {
		w.log.Error("encoding init", slog.Int("player", id), slog.Any("err", err))
	} else {
		client.SendBinary(data)
	}
	w.log.Debug("player connected", slog.Int("player", id))
	return id
}

// Disconnect removes the player owned by client. Calls for an id that has
// since been reused by another connection are ignored.
func (w *World) Disconnect(id int, client Broadcaster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.clients[id]; !ok || c != client {
		return
	}
	w.removePlayer(id)
}

func (w *World) removePlayer(id int) {
	p, ok := w.players[id]
	if !ok {
		return
	}
	delete(w.players, id)
	delete(w.clients, id)
	if p.Joined {
		w.broadcast(Envelope{T: MsgPlayerLeft, Data: PlayerRefMsg{ID: id}}, 0)
	}
	w.log.Info("player left", slog.Int("player", id), slog.String("name", p.Name))
}

// Heartbeat records a liveness acknowledgement from the connection
func (w *World) Heartbeat(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[id]; ok {
		p.LastSeen = w.now()
	}
}

// Handle applies one decoded request from player id
func (w *World) Handle(id int, req Request) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return
	}
	now := w.now()
	p.LastSeen = now

	switch r := req.(type) {
	case JoinRequest:
		w.handleJoin(p, r, now)
	case MoveRequest:
		w.handleMove(p, r, now)
	case ShootRequest:
		w.handleShoot(p, r, now)
	case PauseRequest:
		w.handlePause(p, now)
	default:
		w.log.Debug("dropping request", slog.Int("player", id), slog.String("type", fmt.Sprintf("%T", req)))
	}
}

func (w *World) handleJoin(p *Player, req JoinRequest, now time.Time) {
	if p.Joined {
		w.log.Debug("duplicate join", slog.Int("player", p.ID))
		return
	}
	p.Name = w.uniqueName(req.Name, p.ID)
	p.Joined = true
	x, z := w.findSpawnPoint()
	p.SpawnAt(x, 0, z, now)

	w.broadcast(Envelope{T: MsgPlayerJoined, Data: p.ToState()}, 0)
	w.log.Info("player joined", slog.Int("player", p.ID), slog.String("name", p.Name))
}

func (w *World) handleMove(p *Player, req MoveRequest, now time.Time) {
	err := w.validator.ValidateMove(p, req, now)
	switch {
	case err == nil:
		p.ApplyMove(req, w.cfg.Validation.JumpThreshold, now)
		w.broadcast(Envelope{T: MsgPlayerMoved, Data: p.ToState()}, p.ID)
	case IsProtocolError(err):
		w.log.Debug("dropping move", slog.Int("player", p.ID), slog.Any("reason", err))
	default:
		p.ResetMotion(now)
		w.correct(p, now)
		w.log.Info("move rejected", slog.Int("player", p.ID), slog.Any("reason", err))
	}
}

func (w *World) handleShoot(p *Player, req ShootRequest, now time.Time) {
	err := w.validator.ValidateShot(p, req, now)
	switch {
	case err == nil:
	case IsProtocolError(err), errors.Is(err, ErrShotCooldown):
		w.log.Debug("dropping shot", slog.Int("player", p.ID), slog.Any("reason", err))
		return
	default:
		w.correct(p, now)
		w.log.Info("shot rejected", slog.Int("player", p.ID), slog.Any("reason", err))
		return
	}

	if len(w.projectiles) >= w.cfg.Shots.MaxLive {
		w.log.Warn("projectile cap reached", slog.Int("player", p.ID))
		return
	}
	w.nextProjectileID++
	proj := NewProjectile(strconv.FormatUint(w.nextProjectileID, 10), p.ID, req, now)
	w.projectiles[proj.ID] = proj
	p.LastShot = now

	w.broadcast(Envelope{T: MsgProjectileCreated, Data: proj.ToState()}, 0)
}

// handlePause toggles pause: unpause when paused, cancel a running
// countdown, otherwise start one.
func (w *World) handlePause(p *Player, now time.Time) {
	if !p.Alive() {
		w.log.Debug("dropping pause", slog.Int("player", p.ID), slog.Any("reason", ErrNotJoined))
		return
	}
	switch {
	case p.Paused:
		p.Paused = false
		p.ResetMotion(now)
		w.broadcast(Envelope{T: MsgUnpaused, Data: PlayerRefMsg{ID: p.ID}}, 0)
	case !p.PauseCountdownStart.IsZero():
		p.PauseCountdownStart = time.Time{}
		w.broadcast(Envelope{T: MsgUnpaused, Data: PlayerRefMsg{ID: p.ID}}, 0)
	default:
		p.PauseCountdownStart = now
		w.scheduler.Schedule(now.Add(w.cfg.Game.PauseCountdown), eventPauseComplete, p.ID, now)
		w.broadcast(Envelope{T: MsgPauseCountdown, Data: PauseCountdownMsg{
			ID:      p.ID,
			Seconds: w.cfg.Game.PauseCountdown.Seconds(),
		}}, 0)
	}
}

// completePause fires when a countdown ends. A countdown that was
// cancelled or restarted no longer matches the event's stamp.
func (w *World) completePause(ev scheduledEvent, now time.Time) {
	p, ok := w.players[ev.playerID]
	if !ok || p.PauseCountdownStart.IsZero() || !p.PauseCountdownStart.Equal(ev.stamp) {
		return
	}
	p.PauseCountdownStart = time.Time{}
	if !p.Alive() {
		return
	}
	p.Paused = true
	p.ResetMotion(now)
	w.broadcast(Envelope{T: MsgPaused, Data: PlayerRefMsg{ID: p.ID}}, 0)
}

// Tick runs one simulation step at now
func (w *World) Tick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	for _, ev := range w.scheduler.Due(now) {
		switch ev.kind {
		case eventRespawn:
			w.respawn(ev.playerID, ev.stamp, now)
		case eventPauseComplete:
			w.completePause(ev, now)
		}
	}

	w.updateProjectiles(now)

	if now.Sub(w.lastSweep) >= livenessSweepEvery {
		w.lastSweep = now
		w.sweepIdle(now)
	}
}

// updateProjectiles advances every projectile one tick, then removes it or
// resolves a hit. Resolved projectiles are deleted immediately.
func (w *World) updateProjectiles(now time.Time) {
	step := w.cfg.Shots.Speed / float64(w.cfg.Game.TickRate)
	targets := slices.Sorted(maps.Keys(w.players))

	for id, proj := range w.projectiles {
		proj.Advance(step)

		if reason := w.expiryReason(proj, now); reason != "" {
			delete(w.projectiles, id)
			w.broadcast(Envelope{T: MsgProjectileRemoved, Data: ProjectileRemovedMsg{ID: id, Reason: reason}}, 0)
			continue
		}

		for _, pid := range targets {
			victim, ok := w.players[pid]
			if !ok || pid == proj.OwnerID || victim.Paused || !victim.Alive() {
				continue
			}
			if w.hits(proj, victim, now) {
				w.resolveHit(proj, victim, now)
				break
			}
		}
	}
}

func (w *World) expiryReason(proj *Projectile, now time.Time) string {
	switch {
	case CheckMapBoundary(w.cfg.Physics.MapSize, proj.X, proj.Z, 0):
		return "bounds"
	case proj.Age(now) > w.cfg.Shots.MaxAge:
		return "age"
	case proj.Traveled() > w.cfg.Shots.Distance:
		return "distance"
	}
	if o := w.geometry.CheckPoint(proj.X, proj.Y, proj.Z, w.cfg.Shots.Radius); o != nil {
		if o.IsBoundary() {
			return "bounds"
		}
		return "obstacle"
	}
	return ""
}

// hits tests proj against the victim's extrapolated hitbox
func (w *World) hits(proj *Projectile, victim *Player, now time.Time) bool {
	pose := Extrapolate(victim, now, w.cfg.Physics)
	if Distance(proj.X, proj.Z, pose.X, pose.Z) >= w.cfg.Game.HitRadius {
		return false
	}
	return proj.Y >= pose.Y+w.cfg.Game.HitboxBottom && proj.Y <= pose.Y+w.cfg.Game.HitboxTop
}

// sweepIdle drops connections that stopped acknowledging keep-alives
func (w *World) sweepIdle(now time.Time) {
	for id, p := range w.players {
		if now.Sub(p.LastSeen) <= w.cfg.Server.KeepAliveTimeout {
			continue
		}
		w.log.Info("liveness timeout", slog.Int("player", id), slog.Duration("idle", now.Sub(p.LastSeen)))
		if c, ok := w.clients[id]; ok {
			c.Close()
		}
		w.removePlayer(id)
	}
}

// correct unicasts the authoritative pose to p's connection
func (w *World) correct(p *Player, now time.Time) {
	state := p.ToState()
	pose := Extrapolate(p, now, w.cfg.Physics)
	state.X, state.Y, state.Z, state.Rotation = pose.X, pose.Y, pose.Z, pose.Rotation
	w.unicast(p.ID, Envelope{T: MsgCorrection, Data: state})
}

// broadcast sends msg to every connection except the given id (0 = none)
func (w *World) broadcast(msg Envelope, except int) {
	for id, c := range w.clients {
		if id != except {
			c.SendJSON(msg)
		}
	}
}

func (w *World) unicast(id int, msg Envelope) {
	if c, ok := w.clients[id]; ok {
		c.SendJSON(msg)
	}
}

// uniqueName cleans a requested display name and makes it unique among
// joined players.
func (w *World) uniqueName(raw string, id int) string {
	name := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw))
	if limit := w.cfg.Game.MaxNameLen; limit > 0 && utf8.RuneCountInString(name) > limit {
		name = strings.TrimSpace(string([]rune(name)[:limit]))
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}

	candidate := name
	for n := 2; w.nameTaken(candidate, id); n++ {
		candidate = fmt.Sprintf("%s %d", name, n)
	}
	return candidate
}

func (w *World) nameTaken(name string, self int) bool {
	for id, p := range w.players {
		if id != self && p.Joined && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// snapshot builds the init payload for connection self. Caller holds w.mu.
func (w *World) snapshot(self int) InitMsg {
	msg := InitMsg{
		SelfID:      self,
		MapSize:     w.cfg.Physics.MapSize,
		Tick:        w.tick,
		Players:     make([]PlayerState, 0, len(w.players)),
		Projectiles: make([]ProjectileState, 0, len(w.projectiles)),
		Obstacles:   w.geometry.Obstacles(),
	}
	for _, id := range slices.Sorted(maps.Keys(w.players)) {
		if p := w.players[id]; p.Joined {
			msg.Players = append(msg.Players, p.ToState())
		}
	}
	for _, proj := range w.projectiles {
		msg.Projectiles = append(msg.Projectiles, proj.ToState())
	}
	return msg
}

// Player returns a copy of player id's state
func (w *World) Player(id int) (PlayerState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return p.ToState(), true
}

// PlayerCount returns the number of connected players
func (w *World) PlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.players)
}

// Status returns counters for the status endpoint
func (w *World) Status() StatusInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	info := StatusInfo{
		Players:     len(w.players),
		Projectiles: len(w.projectiles),
		Tick:        w.tick,
	}
	for _, p := range w.players {
		if p.Joined {
			info.Joined++
		}
	}
	return info
}
