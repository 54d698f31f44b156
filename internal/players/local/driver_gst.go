//go:build gstreamer

package local

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"

	"github.com/lantian699/jellyfin-android/internal/playback"
)

// Driver plays a loaded URI list through GStreamer pipelines, one pipeline
// per track, advancing on end of stream.
type Driver struct {
	mu       sync.Mutex
	pipeline string
	device   string
	urls     []string
	index    int
	playing  bool
	gen      int
	current  *gst.Element
	events   chan playback.Event
}

var gstInitOnce sync.Once

// NewDriver creates a GStreamer driver from a pipeline template. The
// template may reference {url} and {device}.
func NewDriver(pipeline string, device string) (*Driver, error) {
	if strings.TrimSpace(pipeline) == "" {
		pipeline = "playbin uri={url}"
	}
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})

	return &Driver{
		pipeline: pipeline,
		device:   device,
		events:   make(chan playback.Event, 16),
	}, nil
}

func (d *Driver) Name() string { return playback.BackendLocal }

// Load replaces the URI list in one batch. Any current pipeline is torn
// down; playback starts on Play.
func (d *Driver) Load(urls []string, startIndex int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if startIndex < 0 || (len(urls) > 0 && startIndex >= len(urls)) {
		startIndex = 0
	}
	d.stopLocked()
	d.urls = urls
	d.index = startIndex
	return nil
}

// Play starts the pipeline for the current list entry.
func (d *Driver) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.urls) == 0 {
		return errors.New("nothing loaded")
	}
	return d.startLocked(d.index)
}

func (d *Driver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return errors.New("not playing")
	}
	d.playing = false
	return d.current.SetState(gst.StatePaused)
}

func (d *Driver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return errors.New("not playing")
	}
	d.playing = true
	return d.current.SetState(gst.StatePlaying)
}

func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "stopped"})
	return nil
}

func (d *Driver) Position() (int64, int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.positionLocked()
}

func (d *Driver) CurrentIndex() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.urls) == 0 {
		return 0, false
	}
	return d.index, true
}

func (d *Driver) Events() <-chan playback.Event { return d.events }

func (d *Driver) startLocked(index int) error {
	d.stopLocked()

	pipeline, err := d.buildPipeline(d.urls[index])
	if err != nil {
		return err
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return err
	}

	d.current = pipeline
	d.index = index
	d.playing = true
	d.gen++
	d.emitLocked(playback.Event{Kind: playback.EventTrackChanged, Player: d.Name(), Index: index})
	d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "playing"})

	go d.monitor(d.gen)
	return nil
}

func (d *Driver) stopLocked() {
	if d.current != nil {
		_ = d.current.SetState(gst.StateNull)
		d.current = nil
	}
	d.playing = false
	d.gen++
}

// monitor polls the pipeline and advances to the next list entry when the
// position reaches the duration. The generation guard retires the loop as
// soon as the pipeline it watched is replaced.
func (d *Driver) monitor(gen int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		if d.gen != gen || d.current == nil {
			d.mu.Unlock()
			return
		}
		pos, dur, ok := d.positionLocked()
		if ok && dur > 0 && pos >= dur-250 {
			d.advanceLocked()
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

func (d *Driver) advanceLocked() {
	next := d.index + 1
	if next >= len(d.urls) {
		d.stopLocked()
		d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "stopped"})
		return
	}
	if err := d.startLocked(next); err != nil {
		d.stopLocked()
		d.emitLocked(playback.Event{Kind: playback.EventError, Player: d.Name(), Detail: err.Error()})
	}
}

func (d *Driver) positionLocked() (int64, int64, bool) {
	if d.current == nil {
		return 0, 0, false
	}
	okPos, posNS := d.current.QueryPosition(gst.FormatTime)
	okDur, durNS := d.current.QueryDuration(gst.FormatTime)
	if !okPos {
		return 0, 0, false
	}
	posMS := posNS / int64(time.Millisecond)
	durMS := int64(0)
	if okDur {
		durMS = durNS / int64(time.Millisecond)
	}
	return posMS, durMS, true
}

func (d *Driver) buildPipeline(url string) (*gst.Element, error) {
	pipeline := d.pipeline
	pipeline = strings.ReplaceAll(pipeline, "{url}", url)
	pipeline = strings.ReplaceAll(pipeline, "{device}", d.device)

	el, err := gst.ParseLaunch(pipeline)
	if err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	return el, nil
}

func (d *Driver) emitLocked(event playback.Event) {
	select {
	case d.events <- event:
	default:
	}
}
