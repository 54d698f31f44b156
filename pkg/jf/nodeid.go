package jf

import (
	"errors"
	"fmt"
	"strings"
)

// NodeDelimiter separates the fields of a browse node identifier.
// Jellyfin item ids are GUIDs, so the delimiter cannot occur inside a field;
// the decoder still rejects empty fields to keep decoding unambiguous.
const NodeDelimiter = "|"

// ShuffleMarker in the secondary field tags a synthetic shuffle selection.
const ShuffleMarker = "shuffle"

// NodeKind enumerates the closed set of browse node kinds.
type NodeKind string

// Browse node kinds. Section kinds carry the library id as primary field;
// detail kinds carry the item id.
const (
	KindRoot        NodeKind = "root"
	KindLibrary     NodeKind = "library"
	KindLatest      NodeKind = "latest"
	KindAlbums      NodeKind = "albums"
	KindArtists     NodeKind = "artists"
	KindSongs       NodeKind = "songs"
	KindGenres      NodeKind = "genres"
	KindPlaylists   NodeKind = "playlists"
	KindGenreAlbums NodeKind = "genre_albums"
	KindAlbum       NodeKind = "album"
	KindArtist      NodeKind = "artist"
	KindPlaylist    NodeKind = "playlist"
)

// ErrUnknownNode reports an identifier outside the closed kind enumeration
// or one missing a required field.
var ErrUnknownNode = errors.New("unknown browse node")

var nodeKinds = map[NodeKind]bool{
	KindRoot:        true,
	KindLibrary:     true,
	KindLatest:      true,
	KindAlbums:      true,
	KindArtists:     true,
	KindSongs:       true,
	KindGenres:      true,
	KindPlaylists:   true,
	KindGenreAlbums: true,
	KindAlbum:       true,
	KindArtist:      true,
	KindPlaylist:    true,
}

// NodeID is a decoded browse node identifier.
type NodeID struct {
	Kind      NodeKind
	Primary   string
	Secondary string
}

// NewNodeID builds a node identifier from its fields.
func NewNodeID(kind NodeKind, primary string, secondary string) NodeID {
	return NodeID{Kind: kind, Primary: primary, Secondary: secondary}
}

// ShuffleID builds the synthetic shuffle identifier for a container.
// The secondary field of the container, if any, is intentionally not
// carried; the shuffle selection addresses the captured sibling list.
func ShuffleID(kind NodeKind, primary string) NodeID {
	return NodeID{Kind: kind, Primary: primary, Secondary: ShuffleMarker}
}

// RootID returns the fixed root identifier.
func RootID() NodeID {
	return NodeID{Kind: KindRoot}
}

// String encodes the identifier by joining non-empty fields with the
// delimiter.
func (n NodeID) String() string {
	parts := []string{string(n.Kind)}
	if n.Primary != "" {
		parts = append(parts, n.Primary)
	}
	if n.Secondary != "" {
		parts = append(parts, n.Secondary)
	}
	return strings.Join(parts, NodeDelimiter)
}

// IsRoot reports whether this is the root node.
func (n NodeID) IsRoot() bool {
	return n.Kind == KindRoot
}

// Shuffled reports whether the identifier carries the shuffle marker.
func (n NodeID) Shuffled() bool {
	return n.Secondary == ShuffleMarker
}

// DecodeNodeID splits an encoded identifier on the first two delimiter
// occurrences and validates it against the closed kind set. Unknown kinds
// and missing required fields yield ErrUnknownNode, never a partial result.
func DecodeNodeID(encoded string) (NodeID, error) {
	if encoded == "" {
		return NodeID{}, fmt.Errorf("%w: empty identifier", ErrUnknownNode)
	}

	parts := strings.SplitN(encoded, NodeDelimiter, 3)
	kind := NodeKind(parts[0])
	if !nodeKinds[kind] {
		return NodeID{}, fmt.Errorf("%w: kind %q", ErrUnknownNode, parts[0])
	}

	id := NodeID{Kind: kind}
	if len(parts) > 1 {
		id.Primary = parts[1]
	}
	if len(parts) > 2 {
		id.Secondary = parts[2]
	}

	for _, part := range parts {
		if part == "" {
			return NodeID{}, fmt.Errorf("%w: empty field in %q", ErrUnknownNode, encoded)
		}
	}
	if kind == KindRoot && len(parts) > 1 {
		return NodeID{}, fmt.Errorf("%w: root takes no fields", ErrUnknownNode)
	}
	if kind != KindRoot && id.Primary == "" {
		return NodeID{}, fmt.Errorf("%w: %s requires an id", ErrUnknownNode, kind)
	}
	if kind == KindGenreAlbums && id.Secondary == "" {
		return NodeID{}, fmt.Errorf("%w: %s requires a genre id", ErrUnknownNode, kind)
	}
	return id, nil
}
