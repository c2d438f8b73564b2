package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 64 * 1024 // snapshots carry full cell lists
	sendBufSize       = 256
	maxMessagesPerSec = 120 // clients report at tick rate plus actions
	maxNameLen        = 16
)

// Client represents a WebSocket connection. Its connID is the connection
// identity used as the player ID inside a room.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	connID     string
	roomID     string
	remoteAddr string
	binary     bool
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client with a fresh connection identity
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		connID:     GenerateID(8),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("addr", c.remoteAddr).Msg("ws read")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Warn().Str("addr", c.remoteAddr).Msg("rate limit exceeded, disconnecting")
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks pre-encoded binary frames
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal error")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// WantsBinary reports whether the client opted into msgpack state frames
func (c *Client) WantsBinary() bool {
	return c.binary
}

// handleMessage routes incoming messages. Malformed payloads are logged
// and dropped here; they never reach room state.
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("addr", c.remoteAddr).Msg("bad envelope")
		return
	}

	switch env.T {
	case MsgJoinRoom:
		c.handleJoinRoom(env.D)
	case MsgUpdatePlayer:
		c.handleUpdatePlayer(env.D)
	case MsgConsumeObject:
		c.handleConsumeObject(env.D)
	case MsgDivideCell:
		c.handleDivideCell(env.D)
	case MsgPlayerCollision:
		c.handlePlayerCollision(env.D)
	case MsgLeaveRoom:
		c.handleLeaveRoom()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

func (c *Client) handleJoinRoom(data json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Err(err).Msg("bad joinRoom payload")
		return
	}
	if c.roomID != "" {
		c.hub.rooms.OnDisconnect(c.connID)
		c.roomID = ""
	}

	name := msg.PlayerName
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	c.binary = msg.Binary

	room, ok := c.hub.rooms.JoinRoom(c.connID, msg.RoomID, name, msg.Color, c.authPlayerID, c)
	if !ok {
		return // refusal already sent to this client
	}
	c.roomID = room.ID
}

func (c *Client) handleUpdatePlayer(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var snap PlayerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Debug().Err(err).Str("player", c.connID).Msg("bad updatePlayer payload")
		return
	}
	if err := room.IngestUpdate(c.connID, snap); err != nil {
		log.Debug().Err(err).Str("player", c.connID).Msg("snapshot rejected")
	}
}

func (c *Client) handleConsumeObject(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg ConsumeObjectMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room.ResolveConsumption(c.connID, msg.ConsumableID)
}

func (c *Client) handleDivideCell(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg DivideCellMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room.ResolveDivision(c.connID, msg.NewCell)
}

func (c *Client) handlePlayerCollision(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg PlayerCollisionMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room.ResolvePredation(c.connID, msg.VictimID)
}

func (c *Client) handleLeaveRoom() {
	if c.roomID != "" {
		c.hub.rooms.OnDisconnect(c.connID)
		c.roomID = ""
	}
}

func (c *Client) currentRoom() *Room {
	if c.roomID == "" {
		return nil
	}
	return c.hub.rooms.Get(c.roomID)
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	prof, err := c.hub.db.GetProfile(c.authPlayerID)
	if err != nil || prof == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "profile not found"}})
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:       c.authUsername,
		BestMass:       prof.BestMass,
		Predations:     prof.Predations,
		TimesEaten:     prof.TimesEaten,
		Consumed:       prof.Consumed,
		Divisions:      prof.Divisions,
		CurrencyEarned: prof.CurrencyEarned,
		Playtime:       prof.Playtime,
	}})
}
