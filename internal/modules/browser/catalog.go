package browser

import (
	"context"

	"github.com/lantian699/jellyfin-android/internal/jellyfin"
)

// catalog is the slice of the Jellyfin client the browser uses.
type catalog interface {
	Ready() bool
	UserViews(ctx context.Context) ([]jellyfin.Item, error)
	Items(ctx context.Context, query jellyfin.ItemsQuery) ([]jellyfin.Item, error)
	AlbumArtists(ctx context.Context, libraryID string, limit int) ([]jellyfin.Item, error)
	Genres(ctx context.Context, libraryID string, limit int) ([]jellyfin.Item, error)
	PlaylistItems(ctx context.Context, playlistID string) ([]jellyfin.Item, error)
	Latest(ctx context.Context, libraryID string) ([]jellyfin.Item, error)
	ImageURL(itemID string, tag string, maxSize int, quality int) string
	StreamURL(itemID string, playSessionID string) string
}
