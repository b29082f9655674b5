package client

import "sync"

// eventLogCapacity bounds the ring buffer so a long game session can't grow
// it without limit; the teacher's TermboxUI has no such log at all
// (ui_termbox.go renders only the latest scalar snapshot), so the capacity
// choice here has no teacher precedent to match and is picked purely to
// keep a terminal screen's event pane readable.
const eventLogCapacity = 100

// EventLog is the client-local record of ephemeral power/animation
// notifications, per SPEC_FULL.md 12's Open Question decision that these
// messages are fire-and-forget on the wire: nothing about them is
// replayed by the server, so a client that wants a scrollback has to keep
// its own, exactly like the teacher's network_handler.go ListenForUDP
// messages appending human-readable strings to TermboxUI via
// AddEventMessage.
type EventLog struct {
	mu   sync.Mutex
	msgs []string
}

// NewEventLog returns an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add appends a formatted line, evicting the oldest entry once capacity is
// reached.
func (l *EventLog) Add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, line)
	if len(l.msgs) > eventLogCapacity {
		l.msgs = l.msgs[len(l.msgs)-eventLogCapacity:]
	}
}

// Recent returns the last n lines, oldest first.
func (l *EventLog) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.msgs) {
		n = len(l.msgs)
	}
	out := make([]string, n)
	copy(out, l.msgs[len(l.msgs)-n:])
	return out
}
