package api

import (
	"gora/app"
)

// ProgressBroadcaster turns run progress into events on one SSE stream
type ProgressBroadcaster struct {
	hub      *SSEHub
	streamID string
}

// NewProgressBroadcaster creates a broadcaster for a stream. A nil hub or an
// empty stream ID gives a broadcaster that drops everything.
func NewProgressBroadcaster(hub *SSEHub, streamID string) *ProgressBroadcaster {
	return &ProgressBroadcaster{hub: hub, streamID: streamID}
}

func (b *ProgressBroadcaster) active() bool { return b.hub != nil && b.streamID != "" }

// Progress returns the progress callback for a request, or nil when inactive.
func (b *ProgressBroadcaster) Progress() func(app.Progress) {
	if !b.active() {
		return nil
	}
	return b.Level
}

// Level broadcasts a finished search level
func (b *ProgressBroadcaster) Level(p app.Progress) {
	if !b.active() {
		return
	}
	b.hub.Broadcast(StreamEvent{
		StreamID:  b.streamID,
		EventType: EventLevel,
		Data: map[string]interface{}{
			"level":    p.Level,
			"levels":   p.Levels,
			"searched": p.Searched,
			"kept":     p.Kept,
			"best":     p.Best,
		},
	})
}

// Finished broadcasts the end of a run
func (b *ProgressBroadcaster) Finished(runID string) {
	if !b.active() {
		return
	}
	b.hub.Broadcast(StreamEvent{StreamID: b.streamID, EventType: EventFinished, RunID: runID})
}

// Failed broadcasts a run error
func (b *ProgressBroadcaster) Failed(err error) {
	if !b.active() {
		return
	}
	b.hub.Broadcast(StreamEvent{
		StreamID:  b.streamID,
		EventType: EventFailed,
		Data:      map[string]interface{}{"error": err.Error()},
	})
}
