package ports

import (
	"context"

	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// Broker publishes commands and reads retained state/presence.
type Broker interface {
	ReplyTopic() string
	PublishCommand(ctx context.Context, nodeID string, cmd jf.CommandEnvelope) (jf.ReplyEnvelope, error)
	ListPresence(ctx context.Context) ([]jf.Presence, error)
	GetBrowserState(ctx context.Context, nodeID string) (jf.BrowserState, error)
	WatchBrowser(ctx context.Context, nodeID string) (<-chan jf.BrowserState, <-chan jf.Event, <-chan error)
}

// Clock returns the current unix time in seconds.
type Clock interface {
	NowUnix() int64
}

// IDGen returns unique correlation IDs.
type IDGen interface {
	NewID() string
}
