package websocket

import (
	"time"

	"github.com/coder/websocket"
	"github.com/cortexos/landing/internal/stats"
)

// MessageTypeStatsUpdate tags messages carrying a fresh snapshot.
const MessageTypeStatsUpdate = "stats_update"

// Client represents a WebSocket client connection
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	remoteAddr  string
	connectedAt time.Time
}

// StatsUpdate is pushed to every client after the project changes, and to
// each new client on connect.
type StatsUpdate struct {
	Type      string         `json:"type"`
	Stats     stats.Snapshot `json:"stats"`
	Timestamp string         `json:"timestamp"`
}

// NewStatsUpdate wraps snapshot in a stats_update message stamped at now.
func NewStatsUpdate(snapshot stats.Snapshot, now time.Time) StatsUpdate {
	return StatsUpdate{
		Type:      MessageTypeStatsUpdate,
		Stats:     snapshot,
		Timestamp: stats.FormatTimestamp(now),
	}
}
