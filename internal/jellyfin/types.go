package jellyfin

// Item is a raw catalog record as returned by the server. The browser only
// reads these; shaping into browse nodes happens downstream.
type Item struct {
	ID                   string            `json:"Id"`
	Name                 string            `json:"Name"`
	Type                 string            `json:"Type"`
	MediaType            string            `json:"MediaType"`
	CollectionType       string            `json:"CollectionType"`
	ParentID             string            `json:"ParentId"`
	AlbumID              string            `json:"AlbumId"`
	Album                string            `json:"Album"`
	AlbumArtist          string            `json:"AlbumArtist"`
	Artists              []string          `json:"Artists"`
	IndexNumber          *int32            `json:"IndexNumber"`
	RunTimeTicks         int64             `json:"RunTimeTicks"`
	IsFolder             bool              `json:"IsFolder"`
	ImageTags            map[string]string `json:"ImageTags"`
	AlbumPrimaryImageTag string            `json:"AlbumPrimaryImageTag"`
}

// PrimaryImageTag returns the item's own primary image tag, if any.
func (i Item) PrimaryImageTag() string {
	if i.ImageTags == nil {
		return ""
	}
	return i.ImageTags["Primary"]
}

// IsAudio reports whether the item is a playable audio track.
func (i Item) IsAudio() bool {
	return i.Type == TypeAudio
}

// ItemsResponse is the generic paged item envelope.
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int64  `json:"TotalRecordCount"`
	StartIndex       int64  `json:"StartIndex"`
}

// Item type discriminators used by the music views.
const (
	TypeAudio       = "Audio"
	TypeMusicAlbum  = "MusicAlbum"
	TypeMusicArtist = "MusicArtist"
	TypeMusicGenre  = "MusicGenre"
	TypePlaylist    = "Playlist"
)

// CollectionMusic marks a user view backed by a music library.
const CollectionMusic = "music"

// Sort field and order names understood by the items endpoint.
const (
	SortName         = "SortName"
	SortIndexNumber  = "ParentIndexNumber,IndexNumber,SortName"
	SortFoldersFirst = "IsFolder,SortName"
	OrderAscending   = "Ascending"
)

// ItemsQuery constrains a generic item query.
type ItemsQuery struct {
	ParentID     string
	ArtistIDs    []string
	GenreIDs     []string
	IncludeTypes []string
	SortBy       string
	SortOrder    string
	Recursive    bool
	Limit        int
	StartIndex   int
	ImageTypes   []string
}
