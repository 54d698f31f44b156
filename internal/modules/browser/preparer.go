package browser

import (
	"errors"
	"math/rand/v2"

	"github.com/lantian699/jellyfin-android/internal/playback"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// errEmptyCapture reports a play request before any container with playable
// children was browsed.
var errEmptyCapture = errors.New("no playable items captured; browse a container first")

type idGenerator interface {
	NewID() string
}

// Preparer turns the captured playable list into a concrete queue: one play
// session id per preparation, a stream URL per entry, and a start index.
type Preparer struct {
	catalog catalog
	ids     idGenerator
	perm    func(n int) []int
}

// NewPreparer creates a queue preparer.
func NewPreparer(c catalog, ids idGenerator) *Preparer {
	return &Preparer{catalog: c, ids: ids, perm: rand.Perm}
}

// PreparedQueue is one fully prepared playback queue.
type PreparedQueue struct {
	Entries       []playback.Entry
	StartIndex    int
	Shuffled      bool
	PlaySessionID string
}

// Prepare builds the queue for a selection out of the captured list. A
// shuffle selection permutes the whole list and starts at zero; any other
// selection keeps capture order and starts at the selected entry. A
// selection not found in the capture degrades to index zero rather than
// failing playback.
func (p *Preparer) Prepare(captured []playback.Entry, selection string) (PreparedQueue, error) {
	if len(captured) == 0 {
		return PreparedQueue{}, errEmptyCapture
	}

	prepared := PreparedQueue{
		Entries:       make([]playback.Entry, len(captured)),
		PlaySessionID: p.ids.NewID(),
	}
	copy(prepared.Entries, captured)

	if id, err := jf.DecodeNodeID(selection); err == nil && id.Shuffled() {
		prepared.Shuffled = true
		order := p.perm(len(prepared.Entries))
		shuffled := make([]playback.Entry, len(prepared.Entries))
		for i, j := range order {
			shuffled[i] = prepared.Entries[j]
		}
		prepared.Entries = shuffled
	} else {
		for i, entry := range prepared.Entries {
			if entry.NodeID == selection {
				prepared.StartIndex = i
				break
			}
		}
	}

	for i := range prepared.Entries {
		prepared.Entries[i].StreamURL = p.catalog.StreamURL(prepared.Entries[i].ItemID, prepared.PlaySessionID)
	}
	return prepared, nil
}
