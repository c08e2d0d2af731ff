package messages

import (
	"encoding/json"

	"frontier-realm/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

// Client to server.
const (
	MessageTypeHello          MessageType = "hello"
	MessageTypeCamera         MessageType = "camera"
	MessageTypeMove           MessageType = "move"
	MessageTypeTeleport       MessageType = "teleport"
	MessageTypeDamage         MessageType = "damage"
	MessageTypePreload        MessageType = "preload"
	MessageTypeReleasePreload MessageType = "release_preload"
	MessageTypeSweep          MessageType = "sweep"
	MessageTypeExploreQuery   MessageType = "exploration_query"
	MessageTypeStatsQuery     MessageType = "stats_query"
)

// Server to client.
const (
	MessageTypeWelcome           MessageType = "welcome"
	MessageTypeFrame             MessageType = "frame"
	MessageTypeMoved             MessageType = "moved"
	MessageTypeDamageResult      MessageType = "damage_result"
	MessageTypePreloadReport     MessageType = "preload_report"
	MessageTypeSwept             MessageType = "swept"
	MessageTypeExploration       MessageType = "exploration"
	MessageTypeStats             MessageType = "stats"
	MessageTypeObjectiveComplete MessageType = "objective_complete"
	MessageTypeError             MessageType = "error"
)

// BaseMessage is the base structure for all outgoing messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Envelope is an incoming message with its payload still encoded
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// HelloMessage opens a session
type HelloMessage struct {
	Client string `json:"client"`
}

// WelcomeMessage describes the world to a new client. Terrain is the
// zstd-compressed row-major terrain layer.
type WelcomeMessage struct {
	SessionID  string             `json:"session_id"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	TileWidth  int                `json:"tile_width"`
	TileHeight int                `json:"tile_height"`
	Start      models.Cell        `json:"start"`
	Terrain    []byte             `json:"terrain"`
	Structures []models.Structure `json:"structures"`
	SideAreas  []models.SideArea  `json:"side_areas"`
}

// CameraMessage reports the camera position in world units
type CameraMessage struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveMessage represents a player movement request
type MoveMessage struct {
	Direction string `json:"direction"` // north, south, east, west, northeast, northwest, southeast, southwest
}

// MovedMessage reports the player position after a move or teleport
type MovedMessage struct {
	Cell   models.Cell `json:"cell"`
	WorldX float64     `json:"world_x"`
	WorldY float64     `json:"world_y"`
}

// TeleportMessage moves the player to a grid cell
type TeleportMessage struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DamageMessage hits a structure. Queued damage is applied at the start
// of the next frame.
type DamageMessage struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
	Queue  bool   `json:"queue,omitempty"`
}

// PreloadMessage pins a named area around a grid cell
type PreloadMessage struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius"`
}

// ReleasePreloadMessage unpins a named area
type ReleasePreloadMessage struct {
	Name string `json:"name"`
}

// SweptMessage reports a forced sweep
type SweptMessage struct {
	Released int                `json:"released"`
	Memory   models.MemoryStats `json:"memory"`
}

// ExplorationMessage carries the explored mask, one byte per cell,
// zstd-compressed
type ExplorationMessage struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Count      int                `json:"count"`
	Mask       []byte             `json:"mask"`
	Structures []models.Structure `json:"structures"`
	SideAreas  []models.SideArea  `json:"side_areas"`
}

// ObjectiveCompleteMessage announces that the destruction target was met
type ObjectiveCompleteMessage struct {
	Destroyed int    `json:"destroyed"`
	Target    int    `json:"target"`
	Frame     uint64 `json:"frame"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes sent in ErrorMessage.
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeUnknownType    = "UNKNOWN_MESSAGE_TYPE"
	ErrCodeNotGreeted     = "HELLO_REQUIRED"
	ErrCodeMoveFailed     = "MOVE_FAILED"
	ErrCodeTeleportFailed = "TELEPORT_FAILED"
)

// NewError builds an error message
func NewError(code, message string) BaseMessage {
	return BaseMessage{Type: MessageTypeError, Payload: ErrorMessage{Code: code, Message: message}}
}
