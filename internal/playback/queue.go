package playback

import (
	"sync"

	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// Entry describes one playable descriptor in the captured queue.
type Entry struct {
	NodeID    string
	ItemID    string
	Title     string
	StreamURL string
}

// Queue holds the playable list captured when a container was last
// resolved. It is mutated only by whole replacement; a new selection
// discards the previous capture.
type Queue struct {
	mu       sync.Mutex
	entries  []Entry
	index    int
	shuffled bool
}

// Replace swaps in a new capture atomically.
func (q *Queue) Replace(entries []Entry, startIndex int, shuffled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = entries
	q.index = clampIndex(startIndex, len(entries))
	q.shuffled = shuffled
}

// Snapshot returns a copy of the captured entries.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// URLs returns the ordered stream URLs of the capture.
func (q *Queue) URLs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	urls := make([]string, 0, len(q.entries))
	for _, entry := range q.entries {
		urls = append(urls, entry.StreamURL)
	}
	return urls
}

// Len returns the number of captured entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Index returns the current entry index.
func (q *Queue) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// SetIndex records the entry a backend reported as current.
func (q *Queue) SetIndex(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.index = clampIndex(index, len(q.entries))
}

// IndexOf locates an entry by its encoded node id.
func (q *Queue) IndexOf(nodeID string) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.entries {
		if entry.NodeID == nodeID {
			return i, true
		}
	}
	return 0, false
}

// Current returns the entry at the current index.
func (q *Queue) Current() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 || q.index < 0 || q.index >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.index], true
}

// Summary returns the protocol queue summary.
func (q *Queue) Summary() jf.QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()

	return jf.QueueState{
		Length:  int64(len(q.entries)),
		Index:   int64(q.index),
		Shuffle: q.shuffled,
	}
}

func clampIndex(index int, length int) int {
	if index < 0 || index >= length {
		return 0
	}
	return index
}
