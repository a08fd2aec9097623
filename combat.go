package main

import (
	"log/slog"
	"time"
)

// resolveHit applies a projectile hit. Caller holds w.mu and has already
// checked that the victim can be hit.
func (w *World) resolveHit(proj *Projectile, victim *Player, now time.Time) {
	delete(w.projectiles, proj.ID)

	if !victim.TakeHit() {
		return
	}
	victim.LastUpdate = now
	victim.DiedAt = now

	msg := PlayerHitMsg{
		ProjectileID: proj.ID,
		ShooterID:    proj.OwnerID,
		VictimID:     victim.ID,
		VictimDeaths: victim.Deaths,
	}
	if shooter, ok := w.players[proj.OwnerID]; ok {
		shooter.Kills++
		msg.ShooterKills = shooter.Kills
	}
	w.broadcast(Envelope{T: MsgPlayerHit, Data: msg}, 0)

	w.scheduler.Schedule(now.Add(w.cfg.Game.RespawnDelay), eventRespawn, victim.ID, now)
	w.log.Info("player hit", slog.Int("victim", victim.ID), slog.Int("shooter", proj.OwnerID),
		slog.String("projectile", proj.ID))
}

// respawn brings a dead player back. The player may have left or been
// revived in the meantime, and ids are reused, so the death stamp must
// still match.
func (w *World) respawn(id int, diedAt, now time.Time) {
	p, ok := w.players[id]
	if !ok || !p.Joined || p.Health > 0 || !p.DiedAt.Equal(diedAt) {
		return
	}
	x, z := w.findSpawnPoint()
	p.SpawnAt(x, 0, z, now)
	p.Paused = false
	p.PauseCountdownStart = time.Time{}

	w.broadcast(Envelope{T: MsgPlayerRespawned, Data: p.ToState()}, 0)
	w.log.Debug("player respawned", slog.Int("player", id), slog.Float64("x", x), slog.Float64("z", z))
}

// findSpawnPoint samples random positions until one is free of obstacles,
// falling back to the map center.
func (w *World) findSpawnPoint() (float64, float64) {
	radius := w.cfg.Physics.TankRadius
	half := w.cfg.Physics.MapSize/2 - radius - 1
	if half <= 0 {
		return 0, 0
	}
	for i := 0; i < w.cfg.Game.SpawnAttempts; i++ {
		x := (w.rng.Float64()*2 - 1) * half
		z := (w.rng.Float64()*2 - 1) * half
		if w.geometry.CheckCollision(x, 0, z, radius) == nil {
			return x, z
		}
	}
	return 0, 0
}
