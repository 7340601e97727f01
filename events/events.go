package events

const (
	TypeScreenCastStep   = "screencast.step"
	TypeScreenCastResult = "screencast.result"
	TypeServiceUpdated   = "service.updated"
)

type Event struct {
	Type string
	Data any
}

// Emit sends an event without blocking. A nil or full channel drops the event.
func Emit(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
