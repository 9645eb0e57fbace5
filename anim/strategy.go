package anim

import "fmt"

// Strategy decides what happens after the last frame.
type Strategy int

const (
	// Loop starts over at the first frame.
	Loop Strategy = iota
	// End finishes with no frame shown.
	End
	// PingPong plays back and forth forever.
	PingPong
	// Freeze finishes with the last frame shown.
	Freeze
)

var strategyNames = [...]string{
	Loop:     "loop",
	End:      "end",
	PingPong: "pingpong",
	Freeze:   "freeze",
}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses the lower-case name of a strategy.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return Strategy(s), nil
		}
	}
	return 0, fmt.Errorf("anim: unknown strategy %q", name)
}

// Direction is the logical play direction.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// EventKind identifies an animation event.
type EventKind int

const (
	// EventFrame is emitted when a frame becomes current.
	EventFrame EventKind = iota
	// EventLoop is emitted when a looping animation wraps around or a
	// ping-pong animation turns.
	EventLoop
	// EventEnd is emitted once when an End or Freeze animation finishes.
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventFrame:
		return "frame"
	case EventLoop:
		return "loop"
	case EventEnd:
		return "end"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is passed to handlers registered with Animation.On.
type Event struct {
	Kind      EventKind
	Animation *Animation

	// Frame and FrameIndex are set for EventFrame. Frame is the zero Frame
	// if the index is out of range.
	Frame      Frame
	FrameIndex int
}
