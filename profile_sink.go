package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ProfileDelta is one increment of lifetime stats for an account.
// A zero PlayerID means the player was anonymous; the delta is dropped.
type ProfileDelta struct {
	PlayerID       int64
	BestMass       float64
	Predations     int
	TimesEaten     int
	Consumed       int
	Divisions      int
	CurrencyEarned float64
	Playtime       float64
}

func (d *ProfileDelta) merge(other ProfileDelta) {
	if other.BestMass > d.BestMass {
		d.BestMass = other.BestMass
	}
	d.Predations += other.Predations
	d.TimesEaten += other.TimesEaten
	d.Consumed += other.Consumed
	d.Divisions += other.Divisions
	d.CurrencyEarned += other.CurrencyEarned
	d.Playtime += other.Playtime
}

// ProfileSink is the write-behind persistence collaborator. Rooms hand it
// deltas from the hot path; a background writer coalesces per account and
// flushes in batches. The game never blocks on it and never depends on it
// for correctness.
type ProfileSink struct {
	db     *DB
	events chan ProfileDelta
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewProfileSink creates and starts the background writer
func NewProfileSink(db *DB) *ProfileSink {
	s := &ProfileSink{
		db:     db,
		events: make(chan ProfileDelta, 1024),
		stop:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.writer()
	return s
}

// Track enqueues a delta for async persistence. Non-blocking, nil-safe,
// a no-op for anonymous players and after Stop. The events channel is
// never closed, so a Track racing Stop enqueues or drops but cannot panic.
func (s *ProfileSink) Track(d ProfileDelta) {
	if s == nil || d.PlayerID == 0 {
		return
	}
	select {
	case <-s.stop:
		return
	default:
	}
	select {
	case s.events <- d:
	default:
		// Channel full, drop the delta rather than blocking a room
	}
}

// Stop gracefully shuts down the writer, draining pending deltas
func (s *ProfileSink) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *ProfileSink) writer() {
	defer s.wg.Done()

	pending := make(map[int64]*ProfileDelta)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	add := func(d ProfileDelta) {
		if cur, ok := pending[d.PlayerID]; ok {
			cur.merge(d)
		} else {
			copied := d
			pending[d.PlayerID] = &copied
		}
	}

	for {
		select {
		case d := <-s.events:
			add(d)
			if len(pending) >= 50 {
				s.flush(pending)
				pending = make(map[int64]*ProfileDelta)
			}
		case <-ticker.C:
			if len(pending) > 0 {
				s.flush(pending)
				pending = make(map[int64]*ProfileDelta)
			}
		case <-s.stop:
			for {
				select {
				case d := <-s.events:
					add(d)
				default:
					if len(pending) > 0 {
						s.flush(pending)
					}
					return
				}
			}
		}
	}
}

func (s *ProfileSink) flush(pending map[int64]*ProfileDelta) {
	if s.db == nil || len(pending) == 0 {
		return
	}
	tx, err := s.db.conn.Begin()
	if err != nil {
		log.Error().Err(err).Msg("profile sink: begin tx")
		return
	}
	defer tx.Rollback()

	for _, d := range pending {
		if err := s.db.ApplyProfileDelta(tx, *d); err != nil {
			log.Error().Err(err).Int64("player", d.PlayerID).Msg("profile sink: apply delta")
		}
	}
	tx.Commit()
}
