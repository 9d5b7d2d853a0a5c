package wsfeed

import (
	"context"
	"time"
)

// Feed periodically broadcasts the output of snapshot under messageType.
type Feed struct {
	hub         *Hub
	interval    time.Duration
	messageType string
	snapshot    func() any
}

func NewFeed(hub *Hub, interval time.Duration, messageType string, snapshot func() any) *Feed {
	return &Feed{hub: hub, interval: interval, messageType: messageType, snapshot: snapshot}
}

// Run broadcasts on every interval with at least one client connected.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f.hub.ClientCount() == 0 {
				continue
			}
			f.hub.Broadcast(f.messageType, f.snapshot())
		}
	}
}
