package playback

import "testing"

func entries(ids ...string) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{NodeID: id, ItemID: id, StreamURL: "http://x/" + id})
	}
	return out
}

func TestQueueReplace(t *testing.T) {
	q := &Queue{}
	q.Replace(entries("a", "b", "c"), 1, false)

	if q.Len() != 3 || q.Index() != 1 {
		t.Fatalf("unexpected queue: len=%d index=%d", q.Len(), q.Index())
	}

	q.Replace(entries("d"), 0, true)
	if q.Len() != 1 {
		t.Fatalf("expected full replacement")
	}
	if !q.Summary().Shuffle {
		t.Fatalf("expected shuffle flag")
	}
	if _, ok := q.IndexOf("a"); ok {
		t.Fatalf("previous capture should be discarded")
	}
}

func TestQueueReplaceClampsStartIndex(t *testing.T) {
	q := &Queue{}
	q.Replace(entries("a", "b"), 9, false)
	if q.Index() != 0 {
		t.Fatalf("expected clamped index, got %d", q.Index())
	}
}

func TestQueueIndexOf(t *testing.T) {
	q := &Queue{}
	q.Replace(entries("a", "b", "c"), 0, false)

	idx, ok := q.IndexOf("b")
	if !ok || idx != 1 {
		t.Fatalf("unexpected index %d %v", idx, ok)
	}
	if _, ok := q.IndexOf("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestQueueCurrent(t *testing.T) {
	q := &Queue{}
	if _, ok := q.Current(); ok {
		t.Fatalf("empty queue has no current entry")
	}

	q.Replace(entries("a", "b"), 0, false)
	q.SetIndex(1)
	current, ok := q.Current()
	if !ok || current.NodeID != "b" {
		t.Fatalf("unexpected current %+v", current)
	}
}

func TestQueueURLsPreserveOrder(t *testing.T) {
	q := &Queue{}
	q.Replace(entries("a", "b", "c"), 0, false)

	urls := q.URLs()
	if len(urls) != 3 || urls[0] != "http://x/a" || urls[2] != "http://x/c" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}
