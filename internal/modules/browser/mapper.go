package browser

import (
	"github.com/lantian699/jellyfin-android/internal/jellyfin"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// Artwork rendering parameters for browse node icons.
const (
	artMaxSize = 500
	artQuality = 90
)

// mapItem shapes one catalog record into a browse node. Tracks are the only
// playable kind; everything else maps to a browsable container.
func mapItem(parent jf.NodeID, item jellyfin.Item, art catalog) jf.Node {
	node := jf.Node{
		ID:       childID(parent, item),
		Title:    item.Name,
		IconURL:  iconURL(item, art),
		Playable: item.IsAudio(),
	}

	if item.IsAudio() {
		node.Subtitle = item.AlbumArtist
		node.Extras = trackExtras(item, node.IconURL)
		return node
	}
	if item.Type == jellyfin.TypeMusicAlbum {
		node.Subtitle = item.AlbumArtist
	}
	return node
}

// childID encodes the identifier a child gets under its parent. Tracks
// inside an album or playlist keep their bare item id; tracks in flat
// listings get a composite id scoped to the listing so the same track can
// appear in several containers without colliding.
func childID(parent jf.NodeID, item jellyfin.Item) string {
	if parent.Kind == jf.KindRoot {
		return jf.NewNodeID(jf.KindLibrary, item.ID, "").String()
	}

	if item.IsAudio() {
		if parent.Kind == jf.KindAlbum || parent.Kind == jf.KindPlaylist {
			return item.ID
		}
		return jf.NewNodeID(parent.Kind, parent.Primary, item.ID).String()
	}

	switch item.Type {
	case jellyfin.TypeMusicAlbum:
		return jf.NewNodeID(jf.KindAlbum, item.ID, "").String()
	case jellyfin.TypeMusicArtist:
		return jf.NewNodeID(jf.KindArtist, item.ID, "").String()
	case jellyfin.TypeMusicGenre:
		return jf.NewNodeID(jf.KindGenreAlbums, parent.Primary, item.ID).String()
	case jellyfin.TypePlaylist:
		return jf.NewNodeID(jf.KindPlaylist, item.ID, "").String()
	default:
		return jf.NewNodeID(parent.Kind, parent.Primary, item.ID).String()
	}
}

// iconURL picks the item's own primary image, falling back to the album's
// when the track itself has none.
func iconURL(item jellyfin.Item, art catalog) string {
	if tag := item.PrimaryImageTag(); tag != "" {
		return art.ImageURL(item.ID, tag, artMaxSize, artQuality)
	}
	if item.AlbumID != "" && item.AlbumPrimaryImageTag != "" {
		return art.ImageURL(item.AlbumID, item.AlbumPrimaryImageTag, artMaxSize, artQuality)
	}
	return ""
}

func trackExtras(item jellyfin.Item, artURL string) *jf.NodeExtra {
	extras := &jf.NodeExtra{
		Album:       item.Album,
		AlbumArtist: item.AlbumArtist,
		ArtURL:      artURL,
	}
	if item.IndexNumber != nil {
		extras.TrackIndex = *item.IndexNumber
	}
	if *extras == (jf.NodeExtra{}) {
		return nil
	}
	return extras
}
