package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured reports a browse attempt before the server session
// (base URL, access token, user id) has been established.
var ErrNotConfigured = errors.New("server session not configured")

// itemFields is requested on every item query so the mapper has linkage and
// artwork information without follow-up calls.
const itemFields = "SortName,IndexNumber,Album,AlbumId,AlbumArtist,Artists,AlbumPrimaryImageTag,ImageTags"

// Config configures the catalog client.
type Config struct {
	BaseURL  string
	Token    string
	UserID   string
	DeviceID string
	Timeout  time.Duration
}

// Client talks to a Jellyfin server's music catalog.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a catalog client. Credentials may be empty at
// construction time; Ready reports whether requests can be issued.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Ready reports whether base URL, token and user id are all present.
func (c *Client) Ready() bool {
	return c.config.BaseURL != "" && c.config.Token != "" && c.config.UserID != ""
}

// UserID returns the configured user id.
func (c *Client) UserID() string {
	return c.config.UserID
}

// UserViews lists the user's top-level library views.
func (c *Client) UserViews(ctx context.Context) ([]Item, error) {
	endpoint := fmt.Sprintf("/Users/%s/Views", url.PathEscape(c.config.UserID))

	var resp ItemsResponse
	if err := c.doJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Items runs the generic item query.
func (c *Client) Items(ctx context.Context, query ItemsQuery) ([]Item, error) {
	endpoint := fmt.Sprintf("/Users/%s/Items", url.PathEscape(c.config.UserID))

	params := url.Values{}
	params.Set("Fields", itemFields)
	if query.ParentID != "" {
		params.Set("ParentId", query.ParentID)
	}
	if len(query.ArtistIDs) > 0 {
		params.Set("ArtistIds", strings.Join(query.ArtistIDs, ","))
	}
	if len(query.GenreIDs) > 0 {
		params.Set("GenreIds", strings.Join(query.GenreIDs, ","))
	}
	if len(query.IncludeTypes) > 0 {
		params.Set("IncludeItemTypes", strings.Join(query.IncludeTypes, ","))
	}
	if query.SortBy != "" {
		params.Set("SortBy", query.SortBy)
	}
	if query.SortOrder != "" {
		params.Set("SortOrder", query.SortOrder)
	}
	if query.Recursive {
		params.Set("Recursive", "true")
	}
	if query.Limit > 0 {
		params.Set("Limit", strconv.Itoa(query.Limit))
	}
	if query.StartIndex > 0 {
		params.Set("StartIndex", strconv.Itoa(query.StartIndex))
	}
	if len(query.ImageTypes) > 0 {
		params.Set("EnableImageTypes", strings.Join(query.ImageTypes, ","))
	}

	var resp ItemsResponse
	if err := c.doJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AlbumArtists lists album artists within a library.
func (c *Client) AlbumArtists(ctx context.Context, libraryID string, limit int) ([]Item, error) {
	params := url.Values{}
	params.Set("UserId", c.config.UserID)
	params.Set("ParentId", libraryID)
	params.Set("SortBy", SortName)
	params.Set("SortOrder", OrderAscending)
	if limit > 0 {
		params.Set("Limit", strconv.Itoa(limit))
	}

	var resp ItemsResponse
	if err := c.doJSON(ctx, "/Artists/AlbumArtists", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Genres lists music genres within a library, folders first.
func (c *Client) Genres(ctx context.Context, libraryID string, limit int) ([]Item, error) {
	params := url.Values{}
	params.Set("UserId", c.config.UserID)
	params.Set("ParentId", libraryID)
	params.Set("SortBy", SortFoldersFirst)
	params.Set("SortOrder", OrderAscending)
	if limit > 0 {
		params.Set("Limit", strconv.Itoa(limit))
	}

	var resp ItemsResponse
	if err := c.doJSON(ctx, "/MusicGenres", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// PlaylistItems lists the tracks of a playlist in playlist order.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]Item, error) {
	endpoint := fmt.Sprintf("/Playlists/%s/Items", url.PathEscape(playlistID))
	params := url.Values{}
	params.Set("UserId", c.config.UserID)
	params.Set("Fields", itemFields)

	var resp ItemsResponse
	if err := c.doJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Latest lists the most recently added audio items of a library.
func (c *Client) Latest(ctx context.Context, libraryID string) ([]Item, error) {
	endpoint := fmt.Sprintf("/Users/%s/Items/Latest", url.PathEscape(c.config.UserID))
	params := url.Values{}
	params.Set("ParentId", libraryID)
	params.Set("IncludeItemTypes", TypeAudio)
	params.Set("Fields", itemFields)

	var items []Item
	if err := c.doJSON(ctx, endpoint, params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ImageURL builds the primary image URL for an item.
func (c *Client) ImageURL(itemID string, tag string, maxSize int, quality int) string {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return ""
	}
	u.Path = path.Join(u.Path, "/Items/", itemID, "/Images/Primary")
	q := u.Query()
	if tag != "" {
		q.Set("tag", tag)
	}
	q.Set("maxHeight", strconv.Itoa(maxSize))
	q.Set("maxWidth", strconv.Itoa(maxSize))
	q.Set("quality", strconv.Itoa(quality))
	q.Set("api_key", c.config.Token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Streaming parameters for the universal audio endpoint. The container list
// is an ordered codec preference with per-container codec fallbacks.
const (
	maxStreamingBitrate  = "140000000"
	containerFallbacks   = "opus,webm|opus,mp3,aac,m4a|aac,m4b|aac,flac,webma,webm|webma,wav,ogg"
	transcodingContainer = "ts"
	transcodingProtocol  = "hls"
	transcodingCodec     = "aac"
)

// StreamURL builds the universal streaming URL for a track. A fresh play
// session id ties all URLs of one queue preparation together server-side.
func (c *Client) StreamURL(itemID string, playSessionID string) string {
	params := url.Values{}
	params.Set("UserId", c.config.UserID)
	params.Set("DeviceId", c.config.DeviceID)
	params.Set("MaxStreamingBitrate", maxStreamingBitrate)
	params.Set("Container", containerFallbacks)
	params.Set("TranscodingContainer", transcodingContainer)
	params.Set("TranscodingProtocol", transcodingProtocol)
	params.Set("AudioCodec", transcodingCodec)
	params.Set("api_key", c.config.Token)
	params.Set("PlaySessionId", playSessionID)
	params.Set("EnableRemoteMedia", "true")
	return fmt.Sprintf("%s/Audio/%s/universal?%s", c.config.BaseURL, url.PathEscape(itemID), params.Encode())
}

func (c *Client) doJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if !c.Ready() {
		return ErrNotConfigured
	}

	endpointURL := c.config.BaseURL + endpoint
	if len(params) > 0 {
		endpointURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Emby-Token", c.config.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jellyfin %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("jellyfin %s: %s", endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("jellyfin %s: decode: %w", endpoint, err)
	}
	return nil
}
