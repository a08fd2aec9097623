package main

import (
	"container/heap"
	"time"
)

type eventKind int

const (
	eventRespawn eventKind = iota + 1
	eventPauseComplete
)

func (k eventKind) String() string {
	switch k {
	case eventRespawn:
		return "respawn"
	case eventPauseComplete:
		return "pause_complete"
	}
	return "unknown"
}

// scheduledEvent is a deferred world mutation. stamp lets the handler tell
// whether the event is stale (e.g. a cancelled pause countdown).
type scheduledEvent struct {
	at       time.Time
	seq      uint64
	kind     eventKind
	playerID int
	stamp    time.Time
}

type eventHeap []scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(scheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// Scheduler is a delay queue drained by the simulation tick. It is not
// safe for concurrent use; the world mutex guards it.
type Scheduler struct {
	events eventHeap
	seq    uint64
}

// Schedule queues an event to fire at or after at.
func (s *Scheduler) Schedule(at time.Time, kind eventKind, playerID int, stamp time.Time) {
	s.seq++
	heap.Push(&s.events, scheduledEvent{at: at, seq: s.seq, kind: kind, playerID: playerID, stamp: stamp})
}

// Due pops every event whose time has come, earliest first. Events
// scheduled for the same instant keep their insertion order.
func (s *Scheduler) Due(now time.Time) []scheduledEvent {
	var due []scheduledEvent
	for len(s.events) > 0 && !s.events[0].at.After(now) {
		due = append(due, heap.Pop(&s.events).(scheduledEvent))
	}
	return due
}

// Len returns the number of pending events
func (s *Scheduler) Len() int {
	return len(s.events)
}
