package playback

import "testing"

type fakeDriver struct {
	name    string
	loaded  []string
	start   int
	playing bool
	stopped int
	events  chan Event
}

func newFakeDriver(name string) *fakeDriver {
	return &fakeDriver{name: name, events: make(chan Event, 8)}
}

func (d *fakeDriver) Name() string { return d.name }

func (d *fakeDriver) Load(urls []string, startIndex int) error {
	d.loaded = urls
	d.start = startIndex
	return nil
}

func (d *fakeDriver) Play() error {
	d.playing = true
	return nil
}

func (d *fakeDriver) Pause() error  { d.playing = false; return nil }
func (d *fakeDriver) Resume() error { d.playing = true; return nil }

func (d *fakeDriver) Stop() error {
	d.playing = false
	d.stopped++
	return nil
}

func (d *fakeDriver) Position() (int64, int64, bool) {
	if len(d.loaded) == 0 {
		return 0, 0, false
	}
	return 1000, 60000, true
}

func (d *fakeDriver) CurrentIndex() (int, bool) {
	if len(d.loaded) == 0 {
		return 0, false
	}
	return d.start, true
}

func (d *fakeDriver) Events() <-chan Event { return d.events }

func TestSwitchToSelfIsNoOp(t *testing.T) {
	local := newFakeDriver(BackendLocal)
	cast := newFakeDriver(BackendCast)
	sb, err := NewSwitchboard(local, cast)
	if err != nil {
		t.Fatalf("new switchboard: %v", err)
	}

	q := &Queue{}
	q.Replace(entries("a", "b"), 0, false)
	sb.MarkStarted(true)

	restarted, err := sb.Switch(BackendLocal, q)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if restarted {
		t.Fatalf("self switch must not restart")
	}
	if local.stopped != 0 || cast.stopped != 0 {
		t.Fatalf("self switch must not touch backends")
	}
	if sb.ActiveName() != BackendLocal {
		t.Fatalf("active backend changed")
	}
}

func TestSwitchStopsAndRestarts(t *testing.T) {
	local := newFakeDriver(BackendLocal)
	cast := newFakeDriver(BackendCast)
	sb, _ := NewSwitchboard(local, cast)

	q := &Queue{}
	q.Replace(entries("a", "b", "c"), 0, false)
	q.SetIndex(2)
	if err := local.Load(q.URLs(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	sb.MarkStarted(true)

	restarted, err := sb.Switch(BackendCast, q)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !restarted {
		t.Fatalf("expected restart on new backend")
	}
	if local.stopped != 1 {
		t.Fatalf("previous backend not stopped")
	}
	if len(cast.loaded) != 3 || cast.start != 2 {
		t.Fatalf("queue not reloaded at previous index: %v %d", cast.loaded, cast.start)
	}
	if !cast.playing {
		t.Fatalf("playback not restarted")
	}
	if sb.ActiveName() != BackendCast {
		t.Fatalf("active backend not switched")
	}
}

func TestSwitchIdleDoesNotRestart(t *testing.T) {
	local := newFakeDriver(BackendLocal)
	cast := newFakeDriver(BackendCast)
	sb, _ := NewSwitchboard(local, cast)

	q := &Queue{}
	restarted, err := sb.Switch(BackendCast, q)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if restarted || len(cast.loaded) != 0 {
		t.Fatalf("idle switch must not load anything")
	}
}

func TestSwitchUnknownBackend(t *testing.T) {
	sb, _ := NewSwitchboard(newFakeDriver(BackendLocal), newFakeDriver(BackendCast))
	if _, err := sb.Switch("chromecast-ultra", &Queue{}); err == nil {
		t.Fatalf("expected error")
	}
}
