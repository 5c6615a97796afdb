package server

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Metrics holds the engine's counters. All fields are accessed only
// through atomic operations so the accept loop, the per-session workers,
// and the admin surface can all touch them without a lock.
type Metrics struct {
	accepts        atomic.Int64
	rejects        atomic.Int64
	framesDecoded  atomic.Int64
	protocolErrors atomic.Int64
	throttled      atomic.Int64
	disconnects    atomic.Int64
}

// Snapshot is a point-in-time copy of Metrics suitable for logging or
// serving over the admin surface.
type Snapshot struct {
	Accepts        int64 `json:"accepts"`
	Rejects        int64 `json:"rejects"`
	FramesDecoded  int64 `json:"frames_decoded"`
	ProtocolErrors int64 `json:"protocol_errors"`
	Throttled      int64 `json:"throttled"`
	Disconnects    int64 `json:"disconnects"`
	Sessions       int   `json:"sessions"`
	QueueDepth     int   `json:"write_queue_depth"`
	QueueHighWater int   `json:"write_queue_high_water"`
}

func (m *Metrics) snapshot(sessions, queueDepth, queueHighWater int) Snapshot {
	return Snapshot{
		Accepts:        m.accepts.Load(),
		Rejects:        m.rejects.Load(),
		FramesDecoded:  m.framesDecoded.Load(),
		ProtocolErrors: m.protocolErrors.Load(),
		Throttled:      m.throttled.Load(),
		Disconnects:    m.disconnects.Load(),
		Sessions:       sessions,
		QueueDepth:     queueDepth,
		QueueHighWater: queueHighWater,
	}
}

// runMetricsLogger periodically logs a humanized summary of the engine's
// counters until ctx is done. Grounded on the teacher's metrics.go
// reporting loop, substituting the session/frame domain for the
// teacher's connection/byte domain but keeping the same "log a snapshot
// every tick" shape.
func runMetricsLogger(ctx context.Context, s *Server, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Metrics()
			log.Printf(
				"metrics: sessions=%s accepts=%s rejects=%s frames=%s proto_errors=%s throttled=%s queue=%s/%s",
				humanize.Comma(int64(snap.Sessions)),
				humanize.Comma(snap.Accepts),
				humanize.Comma(snap.Rejects),
				humanize.Comma(snap.FramesDecoded),
				humanize.Comma(snap.ProtocolErrors),
				humanize.Comma(snap.Throttled),
				humanize.Comma(int64(snap.QueueDepth)),
				humanize.Comma(int64(snap.QueueHighWater)),
			)
		}
	}
}
