package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoinRoom        = "joinRoom"
	MsgUpdatePlayer    = "updatePlayer"
	MsgConsumeObject   = "consumeObject"
	MsgDivideCell      = "divideCell"
	MsgPlayerCollision = "playerCollision"
	MsgLeaveRoom       = "leaveRoom"
	MsgRegister        = "register"
	MsgLogin           = "login"
	MsgAuth            = "auth"
	MsgProfile         = "profile"
)

// Server -> Client message types
const (
	MsgRoomJoined      = "roomJoined"
	MsgPlayerJoined    = "playerJoined"
	MsgPlayerLeft      = "playerLeft"
	MsgPlayerUpdated   = "playerUpdated"
	MsgObjectConsumed  = "objectConsumed"
	MsgCellDivided     = "cellDivided"
	MsgPlayerConsumed  = "playerConsumed"
	MsgPlayerRespawned = "playerRespawned"
	MsgGameStateUpdate = "gameStateUpdate"
	MsgError           = "error"
	MsgAuthOK          = "authOk"
	MsgProfileData     = "profileData"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinRoomMsg requests membership in a room, creating it on first reference.
// Binary opts the connection into msgpack-encoded state broadcasts.
type JoinRoomMsg struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Color      string `json:"color,omitempty"`
	Binary     bool   `json:"binary,omitempty"`
}

// RoomJoinedMsg is the reply to the joining peer only
type RoomJoinedMsg struct {
	Success   bool       `json:"success"`
	RoomID    string     `json:"roomId,omitempty"`
	Players   []*Player  `json:"players,omitempty"`
	GameState *RoomState `json:"gameState,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// RoomState is the initial room snapshot inside roomJoined
type RoomState struct {
	Consumables []Consumable `json:"consumables"`
	StartedAt   int64        `json:"startTime"`
}

// PlayerJoinedMsg notifies existing members of a new player
type PlayerJoinedMsg struct {
	Player *Player `json:"player"`
}

// PlayerLeftMsg notifies remaining members of a departure
type PlayerLeftMsg struct {
	PlayerID string `json:"playerId"`
}

// PlayerUpdatedMsg relays an ingested snapshot to the rest of the room
type PlayerUpdatedMsg struct {
	PlayerID string  `json:"playerId"`
	Player   *Player `json:"player"`
}

// ConsumeObjectMsg claims a consumable by identifier
type ConsumeObjectMsg struct {
	ConsumableID string `json:"consumableId"`
}

// ObjectConsumedMsg confirms a consumption to the whole room
type ObjectConsumedMsg struct {
	ConsumableID string `json:"consumableId"`
	PlayerID     string `json:"playerId"`
}

// DivideCellMsg reports a client-side division; the descriptor is relayed
type DivideCellMsg struct {
	NewCell Cell `json:"newCell"`
}

// CellDividedMsg relays a division to the rest of the room
type CellDividedMsg struct {
	PlayerID string `json:"playerId"`
	NewCell  Cell   `json:"newCell"`
}

// PlayerCollisionMsg reports contact with another player for adjudication
type PlayerCollisionMsg struct {
	VictimID string `json:"victimId"`
}

// PlayerConsumedMsg announces a successful predation to the whole room
type PlayerConsumedMsg struct {
	AttackerID string  `json:"attackerId"`
	VictimID   string  `json:"victimId"`
	MassGained float64 `json:"massGained"`
}

// PlayerRespawnedMsg announces a victim returning to play
type PlayerRespawnedMsg struct {
	PlayerID string  `json:"playerId"`
	Player   *Player `json:"player"`
}

// LeaderboardEntry is one row of the room top-10
type LeaderboardEntry struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Mass     float64 `json:"mass"`
	Color    string  `json:"color"`
}

// GameStateUpdate is the full state broadcast every tick
type GameStateUpdate struct {
	Consumables []Consumable       `json:"consumables"`
	Players     []*Player          `json:"players"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Tick        uint64             `json:"tick"`
}

// ErrorMsg sends an error to a single client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RegisterMsg creates a persistent account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates against an existing account
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes a session from a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ProfileDataMsg returns lifetime stats for the authenticated account
type ProfileDataMsg struct {
	Username       string  `json:"username"`
	BestMass       float64 `json:"bestMass"`
	Predations     int     `json:"predations"`
	TimesEaten     int     `json:"timesEaten"`
	Consumed       int     `json:"consumed"`
	Divisions      int     `json:"divisions"`
	CurrencyEarned float64 `json:"currencyEarned"`
	Playtime       float64 `json:"playtime"`
}
