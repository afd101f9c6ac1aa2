package notifications

import "time"

const (
	WSMessageTypeFlag  = "anomaly_flag"
	WSMessageTypeClaim = "claim_submitted"
)

// WebSocketMessage is the envelope pushed over the reviewer feed.
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
