//go:build !gstreamer

package local

import (
	"errors"

	"github.com/lantian699/jellyfin-android/internal/playback"
)

var errNotEnabled = errors.New("gstreamer build tag not enabled")

// Driver is a stub when the gstreamer tag is not enabled. It constructs so
// the switchboard keeps its two backend slots, but every playback action
// fails.
type Driver struct {
	events chan playback.Event
}

// NewDriver returns the stub driver.
func NewDriver(pipeline string, device string) (*Driver, error) {
	return &Driver{events: make(chan playback.Event)}, nil
}

func (d *Driver) Name() string { return playback.BackendLocal }

func (d *Driver) Load(urls []string, startIndex int) error { return errNotEnabled }
func (d *Driver) Play() error                              { return errNotEnabled }
func (d *Driver) Pause() error                             { return errNotEnabled }
func (d *Driver) Resume() error                            { return errNotEnabled }
func (d *Driver) Stop() error                              { return nil }

func (d *Driver) Position() (int64, int64, bool) { return 0, 0, false }
func (d *Driver) CurrentIndex() (int, bool)      { return 0, false }

func (d *Driver) Events() <-chan playback.Event { return d.events }
