package handlers

import (
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/messages"
	"frontier-realm/server/models"
	"frontier-realm/server/network"
	"frontier-realm/server/services"
)

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	validator     *messages.Validator
	playerService *services.PlayerService
	worldService  *services.WorldService
	clientManager *ClientManager
	greeted       bool
	log           *logrus.Entry
}

// HandleClientConnection serves one websocket until it closes
func HandleClientConnection(wsConn *websocket.Conn, validator *messages.Validator, playerService *services.PlayerService, worldService *services.WorldService, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn)
	handler := &ClientHandler{
		conn:          conn,
		validator:     validator,
		playerService: playerService,
		worldService:  worldService,
		clientManager: clientManager,
		log:           logger.Log.WithFields(logrus.Fields{"component": "handler", "conn": conn.ID()}),
	}
	handler.log.WithField("remote", wsConn.RemoteAddr().String()).Info("Client connected.")

	go conn.WritePump()
	conn.ReadPump(handler)

	clientManager.RemoveClient(conn.ID())
	handler.log.Info("Client disconnected.")
}

// HandleMessage validates and routes one incoming message
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	env, err := h.validator.Decode(message)
	if err != nil {
		h.log.WithError(err).Debug("Rejected message.")
		h.send(messages.NewError(messages.ErrCodeInvalidMessage, err.Error()))
		return
	}

	if env.Type != messages.MessageTypeHello && !h.greeted {
		h.send(messages.NewError(messages.ErrCodeNotGreeted, "send hello first"))
		return
	}

	switch env.Type {
	case messages.MessageTypeHello:
		h.handleHello(env)
	case messages.MessageTypeCamera:
		h.handleCamera(env)
	case messages.MessageTypeMove:
		h.handleMove(env)
	case messages.MessageTypeTeleport:
		h.handleTeleport(env)
	case messages.MessageTypeDamage:
		h.handleDamage(env)
	case messages.MessageTypePreload:
		h.handlePreload(env)
	case messages.MessageTypeReleasePreload:
		h.handleReleasePreload(env)
	case messages.MessageTypeSweep:
		released := h.worldService.ForceSweep()
		h.reply(messages.MessageTypeSwept, messages.SweptMessage{Released: released, Memory: h.worldService.MemoryStats()})
	case messages.MessageTypeExploreQuery:
		h.sendExploration()
	case messages.MessageTypeStatsQuery:
		h.reply(messages.MessageTypeStats, h.worldService.Stats())
	default:
		h.send(messages.NewError(messages.ErrCodeUnknownType, "Unknown message type received"))
	}
}

func (h *ClientHandler) send(msg interface{}) {
	if err := h.conn.SendMessage(msg); err != nil {
		h.log.WithError(err).Warn("Error sending message.")
	}
}

func (h *ClientHandler) reply(t messages.MessageType, payload interface{}) {
	h.send(messages.BaseMessage{Type: t, Payload: payload})
}

func (h *ClientHandler) decode(env messages.Envelope, dst interface{}) bool {
	if err := messages.DecodePayload(env, dst); err != nil {
		h.send(messages.NewError(messages.ErrCodeInvalidMessage, err.Error()))
		return false
	}
	return true
}

// handleHello registers the client and sends the world description
func (h *ClientHandler) handleHello(env messages.Envelope) {
	var hello messages.HelloMessage
	if !h.decode(env, &hello) {
		return
	}
	if !h.greeted {
		h.greeted = true
		h.clientManager.AddClient(h.conn)
		h.log.WithField("client", hello.Client).Info("Client greeted.")
	}

	world := h.worldService.World()
	snapshot := h.worldService.ExplorationSnapshot()
	h.reply(messages.MessageTypeWelcome, messages.WelcomeMessage{
		SessionID:  h.worldService.SessionID(),
		Width:      world.Grid.Width,
		Height:     world.Grid.Height,
		TileWidth:  models.TileWidth,
		TileHeight: models.TileHeight,
		Start:      h.worldService.Player(),
		Terrain:    messages.EncodeLayer(world.Grid.TerrainLayer()),
		Structures: snapshot.Structures,
		SideAreas:  snapshot.SideAreas,
	})
}

func (h *ClientHandler) handleCamera(env messages.Envelope) {
	var cam messages.CameraMessage
	if !h.decode(env, &cam) {
		return
	}
	h.reply(messages.MessageTypeFrame, h.worldService.Frame(cam.X, cam.Y))
}

// handleMove handles player movement requests
func (h *ClientHandler) handleMove(env messages.Envelope) {
	var move messages.MoveMessage
	if !h.decode(env, &move) {
		return
	}
	if _, err := h.playerService.Move(move.Direction); err != nil {
		code := messages.ErrCodeMoveFailed
		if errors.Is(err, services.ErrUnknownDirection) {
			code = messages.ErrCodeInvalidMessage
		}
		h.send(messages.NewError(code, err.Error()))
		return
	}
	h.sendPosition()
}

func (h *ClientHandler) handleTeleport(env messages.Envelope) {
	var tp messages.TeleportMessage
	if !h.decode(env, &tp) {
		return
	}
	if _, err := h.playerService.Teleport(tp.X, tp.Y); err != nil {
		h.send(messages.NewError(messages.ErrCodeTeleportFailed, err.Error()))
		return
	}
	h.sendPosition()
	h.reply(messages.MessageTypePreloadReport, h.worldService.PreloadReport())
}

// sendPosition answers with the player position and tells every other
// client, since they all share the one player.
func (h *ClientHandler) sendPosition() {
	cell, wx, wy := h.playerService.Position()
	msg := messages.BaseMessage{Type: messages.MessageTypeMoved, Payload: messages.MovedMessage{Cell: cell, WorldX: wx, WorldY: wy}}
	h.send(msg)
	h.clientManager.BroadcastToOthers(h.conn.ID(), msg)
}

// handleDamage applies or queues damage; results go to every client
func (h *ClientHandler) handleDamage(env messages.Envelope) {
	var dmg messages.DamageMessage
	if !h.decode(env, &dmg) {
		return
	}
	if dmg.Queue {
		h.worldService.QueueDamage(dmg.ID, dmg.Amount)
		return
	}
	res := h.worldService.ApplyDamage(dmg.ID, dmg.Amount)
	h.clientManager.BroadcastToAll(messages.BaseMessage{Type: messages.MessageTypeDamageResult, Payload: res})
}

func (h *ClientHandler) handlePreload(env messages.Envelope) {
	var p messages.PreloadMessage
	if !h.decode(env, &p) {
		return
	}
	h.worldService.Preload(p.Name, p.X, p.Y, p.Radius)
	h.reply(messages.MessageTypePreloadReport, h.worldService.PreloadReport())
}

func (h *ClientHandler) handleReleasePreload(env messages.Envelope) {
	var p messages.ReleasePreloadMessage
	if !h.decode(env, &p) {
		return
	}
	h.worldService.ReleasePreload(p.Name)
	h.reply(messages.MessageTypePreloadReport, h.worldService.PreloadReport())
}

// sendExploration sends the explored mask, one byte per cell
func (h *ClientHandler) sendExploration() {
	snap := h.worldService.ExplorationSnapshot()
	mask := make([]byte, snap.Width*snap.Height)
	for _, c := range snap.Visited {
		mask[c.Y*snap.Width+c.X] = 1
	}
	h.reply(messages.MessageTypeExploration, messages.ExplorationMessage{
		Width:      snap.Width,
		Height:     snap.Height,
		Count:      snap.Count,
		Mask:       messages.EncodeLayer(mask),
		Structures: snap.Structures,
		SideAreas:  snap.SideAreas,
	})
}
