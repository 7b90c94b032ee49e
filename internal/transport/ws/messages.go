package ws

import (
	"github.com/bytedance/sonic"

	"accessworld-server-go/internal/domain/pipeline"
)

// Message types exchanged on the analyze socket.
const (
	TypeAnalyze = "analyze"
	TypePing    = "ping"
	TypePong    = "pong"
	TypeResult  = "result"
	TypeError   = "error"
)

// InboundMessage is a client frame. Image is base64, optionally a data URL.
type InboundMessage struct {
	Type      string `json:"type"`
	Image     string `json:"image,omitempty"`
	Language  string `json:"language,omitempty"`
	Query     string `json:"query,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// OutboundMessage is a server frame.
type OutboundMessage struct {
	Type      string                   `json:"type"`
	RequestID string                   `json:"request_id,omitempty"`
	Data      *pipeline.PipelineResult `json:"data,omitempty"`
	Message   string                   `json:"message,omitempty"`
}

func decodeMessage(payload []byte) (InboundMessage, error) {
	var msg InboundMessage
	err := sonic.Unmarshal(payload, &msg)
	return msg, err
}

func encodeMessage(msg OutboundMessage) ([]byte, error) {
	return sonic.Marshal(msg)
}
