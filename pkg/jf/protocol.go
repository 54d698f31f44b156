package jf

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BaseTopic is the default MQTT topic prefix for the protocol.
const BaseTopic = "jf/v1"

// CommandEnvelope is the common controller command envelope for MQTT.
type CommandEnvelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	TS      int64           `json:"ts"`
	From    string          `json:"from"`
	ReplyTo string          `json:"replyTo,omitempty"`
	Body    json.RawMessage `json:"body"`
}

// ReplyEnvelope is the response envelope for commands.
type ReplyEnvelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	OK   bool            `json:"ok"`
	TS   int64           `json:"ts"`
	Body json.RawMessage `json:"body,omitempty"`
	Err  *ReplyError     `json:"err,omitempty"`
}

// ReplyError describes an error response.
type ReplyError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

// Error codes carried in ReplyError.Code.
const (
	CodeInvalid  = "INVALID"
	CodeNotFound = "NOT_FOUND"
	CodeAuth     = "AUTH"
	CodeUpstream = "UPSTREAM"
)

// Presence describes a node presence payload.
type Presence struct {
	NodeID string         `json:"nodeId"`
	Kind   string         `json:"kind"`
	Name   string         `json:"name"`
	Caps   map[string]any `json:"caps,omitempty"`
	TS     int64          `json:"ts"`
}

// BrowserState captures the retained state of a browser node.
type BrowserState struct {
	Player       string            `json:"player"`
	Playback     *PlaybackState    `json:"playback,omitempty"`
	Queue        *QueueState       `json:"queue,omitempty"`
	Current      *CurrentItemState `json:"current,omitempty"`
	StateVersion int64             `json:"stateVersion,omitempty"`
	TS           int64             `json:"ts"`
}

// PlaybackState describes playback status and position.
type PlaybackState struct {
	Status     string `json:"status"`
	PositionMS int64  `json:"positionMs"`
	DurationMS int64  `json:"durationMs"`
}

// QueueState describes the captured queue summary.
type QueueState struct {
	Length  int64 `json:"length"`
	Index   int64 `json:"index"`
	Shuffle bool  `json:"shuffle,omitempty"`
}

// CurrentItemState describes the entry playback last started from.
type CurrentItemState struct {
	NodeID string `json:"nodeId"`
	ItemID string `json:"itemId"`
	Title  string `json:"title,omitempty"`
}

// Event is a tagged event payload published on the events topic.
type Event struct {
	Type   string `json:"type"`
	Player string `json:"player,omitempty"`
	Detail string `json:"detail,omitempty"`
	TS     int64  `json:"ts"`
}

// NewCommand builds a command envelope with a JSON body.
func NewCommand(cmdType string, body any) (CommandEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return CommandEnvelope{}, fmt.Errorf("marshal body: %w", err)
	}

	return CommandEnvelope{
		Type: cmdType,
		Body: payload,
	}, nil
}

// ValidateCommandEnvelope validates required envelope fields.
func ValidateCommandEnvelope(cmd CommandEnvelope) error {
	if strings.TrimSpace(cmd.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(cmd.Type) == "" {
		return errors.New("type is required")
	}
	if cmd.TS <= 0 {
		return errors.New("ts must be a positive unix timestamp")
	}
	if strings.TrimSpace(cmd.From) == "" {
		return errors.New("from is required")
	}
	if len(cmd.Body) == 0 {
		return errors.New("body is required")
	}
	return nil
}

// TopicPresence builds the presence topic for a node.
func TopicPresence(topicBase, nodeID string) string {
	return fmt.Sprintf("%s/node/%s/presence", topicBase, nodeID)
}

// TopicState builds the state topic for a node.
func TopicState(topicBase, nodeID string) string {
	return fmt.Sprintf("%s/node/%s/state", topicBase, nodeID)
}

// TopicCommands builds the command topic for a node.
func TopicCommands(topicBase, nodeID string) string {
	return fmt.Sprintf("%s/node/%s/cmd", topicBase, nodeID)
}

// TopicEvents builds the events topic for a node.
func TopicEvents(topicBase, nodeID string) string {
	return fmt.Sprintf("%s/node/%s/evt", topicBase, nodeID)
}

// TopicReply builds the reply topic for a controller instance.
func TopicReply(topicBase, controllerID string) string {
	return fmt.Sprintf("%s/reply/%s", topicBase, controllerID)
}
