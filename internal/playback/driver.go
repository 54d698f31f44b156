package playback

// Driver executes playback actions for one backend. Queue submission is a
// single replace-all Load; backends never see incremental appends.
type Driver interface {
	Name() string
	Load(urls []string, startIndex int) error
	Play() error
	Pause() error
	Resume() error
	Stop() error
	Position() (positionMS int64, durationMS int64, ok bool)
	CurrentIndex() (int, bool)
	Events() <-chan Event
}

// Backend names for the two driver slots.
const (
	BackendLocal = "local"
	BackendCast  = "cast"
)

// EventKind tags a driver event.
type EventKind string

// Driver event kinds consumed by the browser coordination loop.
const (
	EventStateChanged EventKind = "state-changed"
	EventTrackChanged EventKind = "track-changed"
	EventError        EventKind = "error"
	EventRouteChanged EventKind = "route-changed"
)

// Event is a tagged driver event.
type Event struct {
	Kind   EventKind
	Player string
	Index  int
	Status string
	Detail string
}
