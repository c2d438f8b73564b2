package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 60 // room ticks per second
	TickDuration = time.Second / TickRate

	// Effect timers decrement by a fixed 16 ms per tick, matching the
	// client's arithmetic exactly. Not wall-clock time.
	EffectTickMs    = 16.0
	CurrencyPerTick = 0.016 // ~1 currency per second

	MaxPlayersPerRoom = 20
	RespawnDelay      = 5 * time.Second

	LeaderboardSize  = 10
	LeaderboardEvery = TickRate * 5 // refresh every 5000 ms
)

// Broadcaster is the outbound side of a connected peer
type Broadcaster interface {
	SendJSON(msg interface{})
	SendRaw(data []byte)
	SendBinary(data []byte)
	WantsBinary() bool
}

// Room owns one game session: its player set, consumable pool and
// leaderboard. All mutation happens under the room mutex, so message
// handlers and the tick loop never interleave for the same room.
type Room struct {
	ID string

	mu          sync.RWMutex
	players     map[string]*Player
	order       []string // arrival order, leaderboard tie-break
	joined      map[string]time.Time
	clients     map[string]Broadcaster
	consumables []Consumable
	leaderboard []LeaderboardEntry
	respawns    map[string]*time.Timer

	resolver  Resolver
	gate      SnapshotGate
	profiles  *ProfileSink
	tickCount uint64
	createdAt time.Time
	stopped   bool
	stop      chan struct{}
}

// NewRoom creates a room with its consumable pool seeded to the floor
func NewRoom(id string, profiles *ProfileSink) *Room {
	r := &Room{
		ID:        id,
		players:   make(map[string]*Player),
		joined:    make(map[string]time.Time),
		clients:   make(map[string]Broadcaster),
		respawns:  make(map[string]*time.Timer),
		resolver:  Resolver{Mode: ModeAuthoritative},
		gate:      NewTrustingGate(),
		profiles:  profiles,
		createdAt: time.Now(),
		stop:      make(chan struct{}),
	}
	for len(r.consumables) < ConsumableFloor {
		r.consumables = append(r.consumables, NewConsumable())
	}
	return r
}

// Run drives the room at the fixed tick rate until Stop
func (r *Room) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the tick loop and cancels all pending respawn timers.
// Safe to call before Run has been scheduled.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
	for id, t := range r.respawns {
		t.Stop()
		delete(r.respawns, id)
	}
}

// AddPlayer admits a new member, replies roomJoined to them and notifies
// existing members. Fails without mutation when the room is at capacity.
func (r *Room) AddPlayer(connID, name, color string, authID int64, client Broadcaster) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayersPerRoom {
		client.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
			Success: false,
			Message: "room full",
		}})
		return false
	}

	p := NewPlayer(connID, name, color)
	p.AuthID = authID
	r.players[connID] = p
	r.order = append(r.order, connID)
	r.joined[connID] = time.Now()
	r.clients[connID] = client

	players := make([]*Player, 0, len(r.players))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	client.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
		Success: true,
		RoomID:  r.ID,
		Players: players,
		GameState: &RoomState{
			Consumables: r.consumables,
			StartedAt:   r.createdAt.UnixMilli(),
		},
	}})
	r.broadcast(Envelope{T: MsgPlayerJoined, Data: PlayerJoinedMsg{Player: p}}, connID)
	return true
}

// RemovePlayer deletes the player unconditionally; no-op if absent
func (r *Room) RemovePlayer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return
	}
	if t, ok := r.respawns[connID]; ok {
		t.Stop()
		delete(r.respawns, connID)
	}
	r.profiles.Track(ProfileDelta{
		PlayerID: p.AuthID,
		BestMass: p.TotalMass,
		Playtime: time.Since(r.joined[connID]).Seconds(),
	})
	delete(r.players, connID)
	delete(r.clients, connID)
	delete(r.joined, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.broadcast(Envelope{T: MsgPlayerLeft, Data: PlayerLeftMsg{PlayerID: connID}}, "")
}

// IngestUpdate applies a client snapshot through the gate and relays it.
// A missing player is a stale message, not an error.
func (r *Room) IngestUpdate(connID string, snap PlayerSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return nil
	}
	if err := r.gate.Apply(p, snap); err != nil {
		return err
	}
	r.broadcast(Envelope{T: MsgPlayerUpdated, Data: PlayerUpdatedMsg{
		PlayerID: connID,
		Player:   p,
	}}, connID)
	return nil
}

// ResolveConsumption removes a claimed consumable, replenishes the pool by
// exactly one and credits the consumer. A duplicate or late claim for an
// identifier no longer in the pool is a silent no-op.
func (r *Room) ResolveConsumption(connID, consumableID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return
	}
	idx := -1
	for i := range r.consumables {
		if r.consumables[i].ID == consumableID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	r.consumables = append(r.consumables[:idx], r.consumables[idx+1:]...)
	r.consumables = append(r.consumables, NewConsumable())
	p.Currency += ConsumeReward
	r.profiles.Track(ProfileDelta{PlayerID: p.AuthID, Consumed: 1, CurrencyEarned: ConsumeReward})

	r.broadcast(Envelope{T: MsgObjectConsumed, Data: ObjectConsumedMsg{
		ConsumableID: consumableID,
		PlayerID:     connID,
	}}, "")
}

// ResolveDivision credits the divide reward and relays the new cell to the
// rest of the room. Mass conservation is the client's responsibility.
func (r *Room) ResolveDivision(connID string, newCell Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return
	}
	p.Currency += DivideReward
	r.profiles.Track(ProfileDelta{PlayerID: p.AuthID, Divisions: 1, CurrencyEarned: DivideReward})

	r.broadcast(Envelope{T: MsgCellDivided, Data: CellDividedMsg{
		PlayerID: connID,
		NewCell:  newCell,
	}}, connID)
}

// ResolvePredation adjudicates a reported player collision. Success needs
// a strict 20% mass advantage; the victim goes down, the attacker earns
// currency, and a respawn fires after a fixed delay if the victim is still
// in the room. Anything else is a no-op.
func (r *Room) ResolvePredation(attackerID, victimID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attacker, ok := r.players[attackerID]
	if !ok {
		return
	}
	victim, ok := r.players[victimID]
	if !ok || !victim.IsAlive {
		return
	}
	attacker.RecomputeTotalMass()
	victim.RecomputeTotalMass()
	if !r.resolver.CanPrey(attacker.TotalMass, victim.TotalMass) {
		return
	}

	victim.IsAlive = false
	gained := victim.TotalMass * PredationPayout
	attacker.Currency += gained
	r.profiles.Track(ProfileDelta{PlayerID: attacker.AuthID, Predations: 1, CurrencyEarned: gained})
	r.profiles.Track(ProfileDelta{PlayerID: victim.AuthID, TimesEaten: 1, BestMass: victim.TotalMass})

	r.broadcast(Envelope{T: MsgPlayerConsumed, Data: PlayerConsumedMsg{
		AttackerID: attackerID,
		VictimID:   victimID,
		MassGained: gained,
	}}, "")

	r.respawns[victimID] = time.AfterFunc(RespawnDelay, func() {
		r.respawn(victimID)
	})
}

// respawn brings a predation victim back with a single fresh main cell.
// Dropped silently if the victim left the room in the meantime.
func (r *Room) respawn(victimID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.respawns, victimID)
	p, ok := r.players[victimID]
	if !ok || p.IsAlive {
		return
	}
	p.ResetToSpawn()
	r.broadcast(Envelope{T: MsgPlayerRespawned, Data: PlayerRespawnedMsg{
		PlayerID: victimID,
		Player:   p,
	}}, "")
}

// tick advances one frame: effect decay, passive currency, derived mass,
// pool replenishment, periodic leaderboard refresh, then the state
// broadcast to every member.
func (r *Room) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickCount++
	for _, id := range r.order {
		p := r.players[id]
		decayEffect(&p.TemporaryEffects.DoubleConsume)
		decayEffect(&p.TemporaryEffects.MegaConsume)
		p.Currency += CurrencyPerTick
		p.RecomputeTotalMass()
	}

	for len(r.consumables) < ConsumableFloor {
		r.consumables = append(r.consumables, NewConsumable())
	}

	if (r.tickCount-1)%LeaderboardEvery == 0 {
		r.leaderboard = r.computeLeaderboard()
	}

	r.broadcastState()
}

func decayEffect(e *TemporaryEffect) {
	if !e.Active {
		return
	}
	e.TimeLeft -= EffectTickMs
	if e.TimeLeft <= 0 {
		e.Active = false
		e.TimeLeft = 0
	}
}

// computeLeaderboard ranks the top players by total mass, descending.
// Ties keep arrival order.
func (r *Room) computeLeaderboard() []LeaderboardEntry {
	type ranked struct {
		mass  float64
		name  string
		color string
	}
	rows := make([]ranked, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		rows = append(rows, ranked{mass: p.TotalMass, name: p.Name, color: p.Color})
	}
	// insertion sort keeps it stable; the list is at most maxPlayers long
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].mass > rows[j-1].mass; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	n := len(rows)
	if n > LeaderboardSize {
		n = LeaderboardSize
	}
	board := make([]LeaderboardEntry, n)
	for i := 0; i < n; i++ {
		board[i] = LeaderboardEntry{
			Position: i + 1,
			Name:     rows[i].name,
			Mass:     rows[i].mass,
			Color:    rows[i].color,
		}
	}
	return board
}

// broadcastState sends the tick state to every member. Marshal happens
// once per encoding; clients that opted in at join receive msgpack.
func (r *Room) broadcastState() {
	if len(r.clients) == 0 {
		return
	}
	update := GameStateUpdate{
		Consumables: r.consumables,
		Players:     make([]*Player, 0, len(r.players)),
		Leaderboard: r.leaderboard,
		Tick:        r.tickCount,
	}
	for _, id := range r.order {
		update.Players = append(update.Players, r.players[id])
	}

	var jsonData, binData []byte
	for _, c := range r.clients {
		if c.WantsBinary() {
			if binData == nil {
				var err error
				if binData, err = msgpack.Marshal(update); err != nil {
					log.Error().Err(err).Str("room", r.ID).Msg("state msgpack marshal")
					continue
				}
			}
			c.SendBinary(binData)
			continue
		}
		if jsonData == nil {
			var err error
			if jsonData, err = json.Marshal(Envelope{T: MsgGameStateUpdate, Data: update}); err != nil {
				log.Error().Err(err).Str("room", r.ID).Msg("state marshal")
				return
			}
		}
		c.SendRaw(jsonData)
	}
}

// broadcast marshals once and sends to every member except exceptID
func (r *Room) broadcast(env Envelope, exceptID string) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("room", r.ID).Msg("broadcast marshal")
		return
	}
	for id, c := range r.clients {
		if id == exceptID {
			continue
		}
		c.SendRaw(data)
	}
}

// PlayerCount returns the number of players in the room
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
