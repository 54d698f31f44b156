package browser

import (
	"context"
	"fmt"
	"testing"

	"github.com/lantian699/jellyfin-android/internal/jellyfin"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

type fakeCatalog struct {
	ready    bool
	views    []jellyfin.Item
	items    []jellyfin.Item
	latest   []jellyfin.Item
	artists  []jellyfin.Item
	genres   []jellyfin.Item
	playlist []jellyfin.Item
	err      error

	calls       int
	itemQueries []jellyfin.ItemsQuery
	genreCalls  int
}

func (f *fakeCatalog) Ready() bool { return f.ready }

func (f *fakeCatalog) UserViews(ctx context.Context) ([]jellyfin.Item, error) {
	f.calls++
	return f.views, f.err
}

func (f *fakeCatalog) Items(ctx context.Context, query jellyfin.ItemsQuery) ([]jellyfin.Item, error) {
	f.calls++
	f.itemQueries = append(f.itemQueries, query)
	return f.items, f.err
}

func (f *fakeCatalog) AlbumArtists(ctx context.Context, libraryID string, limit int) ([]jellyfin.Item, error) {
	f.calls++
	return f.artists, f.err
}

func (f *fakeCatalog) Genres(ctx context.Context, libraryID string, limit int) ([]jellyfin.Item, error) {
	f.calls++
	f.genreCalls++
	return f.genres, f.err
}

func (f *fakeCatalog) PlaylistItems(ctx context.Context, playlistID string) ([]jellyfin.Item, error) {
	f.calls++
	return f.playlist, f.err
}

func (f *fakeCatalog) Latest(ctx context.Context, libraryID string) ([]jellyfin.Item, error) {
	f.calls++
	return f.latest, f.err
}

func (f *fakeCatalog) ImageURL(itemID string, tag string, maxSize int, quality int) string {
	return fmt.Sprintf("img:%s:%s", itemID, tag)
}

func (f *fakeCatalog) StreamURL(itemID string, playSessionID string) string {
	return fmt.Sprintf("stream:%s:%s", itemID, playSessionID)
}

func track(id string, name string) jellyfin.Item {
	return jellyfin.Item{ID: id, Name: name, Type: jellyfin.TypeAudio, MediaType: "Audio"}
}

func TestRootListsOnlyMusicViews(t *testing.T) {
	cat := &fakeCatalog{ready: true, views: []jellyfin.Item{
		{ID: "lib1", Name: "Music", CollectionType: jellyfin.CollectionMusic},
		{ID: "lib2", Name: "Movies", CollectionType: "movies"},
		{ID: "lib3", Name: "More Music", CollectionType: jellyfin.CollectionMusic},
	}}

	nodes, playables, err := NewResolver(cat).Children(context.Background(), jf.RootID())
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if cat.calls != 1 {
		t.Fatalf("expected a single catalog call, got %d", cat.calls)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 music views, got %d", len(nodes))
	}
	if nodes[0].ID != "library|lib1" || nodes[1].ID != "library|lib3" {
		t.Fatalf("unexpected view ids: %q %q", nodes[0].ID, nodes[1].ID)
	}
	if len(playables) != 0 {
		t.Fatalf("views must not be playable")
	}
}

func TestLibrarySectionsAreFixed(t *testing.T) {
	cat := &fakeCatalog{ready: true}

	nodes, _, err := NewResolver(cat).Children(context.Background(), jf.NewNodeID(jf.KindLibrary, "lib1", ""))
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if cat.calls != 0 {
		t.Fatalf("section menu must not hit the catalog, got %d calls", cat.calls)
	}

	want := []string{"latest|lib1", "albums|lib1", "artists|lib1", "songs|lib1", "genres|lib1", "playlists|lib1"}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(nodes))
	}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Fatalf("section %d: got %q want %q", i, nodes[i].ID, id)
		}
		if nodes[i].Playable {
			t.Fatalf("section %q must not be playable", id)
		}
	}
}

func TestShufflePrependedForMultiplePlayables(t *testing.T) {
	cat := &fakeCatalog{ready: true, items: []jellyfin.Item{
		track("t1", "One"),
		track("t2", "Two"),
		track("t3", "Three"),
	}}

	nodes, playables, err := NewResolver(cat).Children(context.Background(), jf.NewNodeID(jf.KindAlbum, "a1", ""))
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected shuffle plus 3 tracks, got %d", len(nodes))
	}
	if nodes[0].ID != "album|a1|shuffle" || !nodes[0].Playable {
		t.Fatalf("unexpected shuffle node: %+v", nodes[0])
	}
	if nodes[1].ID != "t1" || nodes[2].ID != "t2" || nodes[3].ID != "t3" {
		t.Fatalf("track order not preserved: %+v", nodes[1:])
	}
	if len(playables) != 3 || playables[0].ItemID != "t1" {
		t.Fatalf("unexpected capture: %+v", playables)
	}
}

func TestNoShuffleForSinglePlayable(t *testing.T) {
	cat := &fakeCatalog{ready: true, items: []jellyfin.Item{track("t1", "Only")}}

	nodes, playables, err := NewResolver(cat).Children(context.Background(), jf.NewNodeID(jf.KindAlbum, "a1", ""))
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "t1" {
		t.Fatalf("single track must not get a shuffle node: %+v", nodes)
	}
	if len(playables) != 1 {
		t.Fatalf("unexpected capture: %+v", playables)
	}
}

func TestAlbumsArtistFilterReplacesLibraryScope(t *testing.T) {
	cat := &fakeCatalog{ready: true}

	_, _, err := NewResolver(cat).Children(context.Background(), jf.NewNodeID(jf.KindAlbums, "lib1", "art1"))
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(cat.itemQueries) != 1 {
		t.Fatalf("expected one item query, got %d", len(cat.itemQueries))
	}
	query := cat.itemQueries[0]
	if query.ParentID != "" {
		t.Fatalf("artist filter must drop the library scope, got parent %q", query.ParentID)
	}
	if len(query.ArtistIDs) != 1 || query.ArtistIDs[0] != "art1" {
		t.Fatalf("unexpected artist filter: %v", query.ArtistIDs)
	}
	if query.Limit != sectionLimit {
		t.Fatalf("unexpected limit %d", query.Limit)
	}
}

func TestGenresBifurcate(t *testing.T) {
	cat := &fakeCatalog{ready: true, genres: []jellyfin.Item{
		{ID: "g1", Name: "Jazz", Type: jellyfin.TypeMusicGenre},
	}}
	resolver := NewResolver(cat)

	nodes, _, err := resolver.Children(context.Background(), jf.NewNodeID(jf.KindGenres, "lib1", ""))
	if err != nil {
		t.Fatalf("genre buckets: %v", err)
	}
	if cat.genreCalls != 1 {
		t.Fatalf("expected the genre listing endpoint, got %d calls", cat.genreCalls)
	}
	if len(nodes) != 1 || nodes[0].ID != "genre_albums|lib1|g1" {
		t.Fatalf("unexpected genre bucket: %+v", nodes)
	}

	_, _, err = resolver.Children(context.Background(), jf.NewNodeID(jf.KindGenreAlbums, "lib1", "g1"))
	if err != nil {
		t.Fatalf("genre albums: %v", err)
	}
	if len(cat.itemQueries) != 1 {
		t.Fatalf("expected one item query, got %d", len(cat.itemQueries))
	}
	query := cat.itemQueries[0]
	if query.ParentID != "lib1" || len(query.GenreIDs) != 1 || query.GenreIDs[0] != "g1" {
		t.Fatalf("unexpected genre query: %+v", query)
	}
}

func TestAlbumTracksSortedByIndex(t *testing.T) {
	cat := &fakeCatalog{ready: true}

	_, _, err := NewResolver(cat).Children(context.Background(), jf.NewNodeID(jf.KindAlbum, "a1", ""))
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	query := cat.itemQueries[0]
	if query.SortBy != jellyfin.SortIndexNumber {
		t.Fatalf("album tracks must sort by track index, got %q", query.SortBy)
	}
	if query.Limit != 0 {
		t.Fatalf("album listing must not be truncated, got limit %d", query.Limit)
	}
}

func TestCatalogErrorPropagates(t *testing.T) {
	cat := &fakeCatalog{ready: true, err: jellyfin.ErrNotConfigured}

	_, _, err := NewResolver(cat).Children(context.Background(), jf.RootID())
	if err == nil {
		t.Fatalf("expected error")
	}
}
