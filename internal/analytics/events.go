// Package analytics records one event per scoring request and ships the
// events to Kafka off the request path.
package analytics

import "time"

// EventType classifies a ScoreEvent.
type EventType string

const (
	EventScore     EventType = "score"
	EventCacheHit  EventType = "cache_hit"
	EventCacheMiss EventType = "cache_miss"
	EventInvalid   EventType = "invalid_request"
)

// ScoreEvent describes one scoring request. Invalid requests carry Error
// and leave the result fields zero; TopIndex is nil when nothing was
// returned.
type ScoreEvent struct {
	Type       EventType `json:"type"`
	QueryIndex int       `json:"query_index"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	Returned   int       `json:"returned"`
	TopIndex   *int      `json:"top_index,omitempty"`
	Ranked     bool      `json:"ranked"`
	Mode       string    `json:"mode,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}
