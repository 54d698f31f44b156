package browser

import (
	"context"
	"fmt"

	"github.com/lantian699/jellyfin-android/internal/jellyfin"
	"github.com/lantian699/jellyfin-android/internal/playback"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// sectionLimit caps flat section listings; detail containers (albums,
// playlists) are always fetched whole.
const sectionLimit = 100

// librarySections is the fixed section menu of every music library, in
// display order.
var librarySections = []struct {
	kind  jf.NodeKind
	title string
}{
	{jf.KindLatest, "Latest"},
	{jf.KindAlbums, "Albums"},
	{jf.KindArtists, "Artists"},
	{jf.KindSongs, "Songs"},
	{jf.KindGenres, "Genres"},
	{jf.KindPlaylists, "Playlists"},
}

// Resolver turns decoded node identifiers into child listings.
type Resolver struct {
	catalog catalog
}

// NewResolver creates a resolver over the catalog.
func NewResolver(c catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Children resolves a node into its child nodes plus the playable capture
// that goes with the listing. Catalog order is preserved; when the listing
// holds more than one playable, a synthetic shuffle node is prepended.
func (r *Resolver) Children(ctx context.Context, id jf.NodeID) ([]jf.Node, []playback.Entry, error) {
	if id.Kind == jf.KindLibrary {
		return sectionNodes(id.Primary), nil, nil
	}

	items, err := r.fetch(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	nodes := make([]jf.Node, 0, len(items))
	var playables []playback.Entry
	for _, item := range items {
		node := mapItem(id, item, r.catalog)
		nodes = append(nodes, node)
		if node.Playable {
			playables = append(playables, playback.Entry{
				NodeID: node.ID,
				ItemID: item.ID,
				Title:  item.Name,
			})
		}
	}

	if len(playables) > 1 {
		shuffle := jf.Node{
			ID:       jf.ShuffleID(id.Kind, id.Primary).String(),
			Title:    "Shuffle",
			Playable: true,
		}
		nodes = append([]jf.Node{shuffle}, nodes...)
	}
	return nodes, playables, nil
}

func (r *Resolver) fetch(ctx context.Context, id jf.NodeID) ([]jellyfin.Item, error) {
	switch id.Kind {
	case jf.KindRoot:
		return r.musicViews(ctx)

	case jf.KindLatest:
		return r.catalog.Latest(ctx, id.Primary)

	case jf.KindAlbums:
		// An artist filter replaces the library scope.
		if id.Secondary != "" {
			return r.albumsByArtist(ctx, id.Secondary)
		}
		return r.catalog.Items(ctx, jellyfin.ItemsQuery{
			ParentID:     id.Primary,
			IncludeTypes: []string{jellyfin.TypeMusicAlbum},
			SortBy:       jellyfin.SortName,
			SortOrder:    jellyfin.OrderAscending,
			Recursive:    true,
			Limit:        sectionLimit,
		})

	case jf.KindArtists:
		return r.catalog.AlbumArtists(ctx, id.Primary, sectionLimit)

	case jf.KindSongs:
		return r.catalog.Items(ctx, jellyfin.ItemsQuery{
			ParentID:     id.Primary,
			IncludeTypes: []string{jellyfin.TypeAudio},
			SortBy:       jellyfin.SortName,
			SortOrder:    jellyfin.OrderAscending,
			Recursive:    true,
			Limit:        sectionLimit,
		})

	case jf.KindGenres:
		// Without a genre id this lists the genre buckets; with one it
		// lists the albums tagged with that genre.
		if id.Secondary != "" {
			return r.albumsByGenre(ctx, id.Primary, id.Secondary)
		}
		return r.catalog.Genres(ctx, id.Primary, sectionLimit)

	case jf.KindGenreAlbums:
		return r.albumsByGenre(ctx, id.Primary, id.Secondary)

	case jf.KindPlaylists:
		return r.catalog.Items(ctx, jellyfin.ItemsQuery{
			ParentID:     id.Primary,
			IncludeTypes: []string{jellyfin.TypePlaylist},
			SortBy:       jellyfin.SortName,
			SortOrder:    jellyfin.OrderAscending,
			Recursive:    true,
			Limit:        sectionLimit,
		})

	case jf.KindAlbum:
		return r.catalog.Items(ctx, jellyfin.ItemsQuery{
			ParentID:     id.Primary,
			IncludeTypes: []string{jellyfin.TypeAudio},
			SortBy:       jellyfin.SortIndexNumber,
			SortOrder:    jellyfin.OrderAscending,
		})

	case jf.KindArtist:
		return r.albumsByArtist(ctx, id.Primary)

	case jf.KindPlaylist:
		return r.catalog.PlaylistItems(ctx, id.Primary)

	default:
		return nil, fmt.Errorf("%w: kind %q", jf.ErrUnknownNode, id.Kind)
	}
}

// musicViews lists the user's music libraries; other view types are
// filtered out.
func (r *Resolver) musicViews(ctx context.Context) ([]jellyfin.Item, error) {
	views, err := r.catalog.UserViews(ctx)
	if err != nil {
		return nil, err
	}
	music := make([]jellyfin.Item, 0, len(views))
	for _, view := range views {
		if view.CollectionType == jellyfin.CollectionMusic {
			music = append(music, view)
		}
	}
	return music, nil
}

func (r *Resolver) albumsByArtist(ctx context.Context, artistID string) ([]jellyfin.Item, error) {
	return r.catalog.Items(ctx, jellyfin.ItemsQuery{
		ArtistIDs:    []string{artistID},
		IncludeTypes: []string{jellyfin.TypeMusicAlbum},
		SortBy:       jellyfin.SortName,
		SortOrder:    jellyfin.OrderAscending,
		Recursive:    true,
		Limit:        sectionLimit,
	})
}

func (r *Resolver) albumsByGenre(ctx context.Context, libraryID string, genreID string) ([]jellyfin.Item, error) {
	return r.catalog.Items(ctx, jellyfin.ItemsQuery{
		ParentID:     libraryID,
		GenreIDs:     []string{genreID},
		IncludeTypes: []string{jellyfin.TypeMusicAlbum},
		SortBy:       jellyfin.SortName,
		SortOrder:    jellyfin.OrderAscending,
		Recursive:    true,
		Limit:        sectionLimit,
	})
}

// sectionNodes synthesizes the fixed section menu of a library without a
// catalog round trip.
func sectionNodes(libraryID string) []jf.Node {
	nodes := make([]jf.Node, 0, len(librarySections))
	for _, section := range librarySections {
		nodes = append(nodes, jf.Node{
			ID:    jf.NewNodeID(section.kind, libraryID, "").String(),
			Title: section.title,
		})
	}
	return nodes
}
