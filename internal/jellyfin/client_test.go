package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testClient(handler http.Handler) *Client {
	c := NewClient(Config{
		BaseURL:  "http://jellyfin.test",
		Token:    "token",
		UserID:   "user",
		DeviceID: "device 1",
	})
	c.http = &http.Client{Transport: roundTripper{handler: handler}}
	return c
}

func TestUserViews(t *testing.T) {
	handler := http.NewServeMux()
	handler.HandleFunc("/Users/user/Views", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Emby-Token") != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, ItemsResponse{Items: []Item{
			{ID: "v1", Name: "Music", CollectionType: "music"},
			{ID: "v2", Name: "Movies", CollectionType: "movies"},
		}})
	})

	views, err := testClient(handler).UserViews(context.Background())
	if err != nil {
		t.Fatalf("user views: %v", err)
	}
	if len(views) != 2 || views[0].CollectionType != CollectionMusic {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestItemsQueryParams(t *testing.T) {
	var query url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, ItemsResponse{})
	})

	_, err := testClient(handler).Items(context.Background(), ItemsQuery{
		ParentID:     "lib1",
		IncludeTypes: []string{TypeMusicAlbum},
		SortBy:       SortName,
		SortOrder:    OrderAscending,
		Recursive:    true,
		Limit:        100,
	})
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if query.Get("ParentId") != "lib1" {
		t.Fatalf("expected parent id, got %q", query.Get("ParentId"))
	}
	if query.Get("IncludeItemTypes") != "MusicAlbum" {
		t.Fatalf("unexpected include types %q", query.Get("IncludeItemTypes"))
	}
	if query.Get("SortBy") != "SortName" || query.Get("SortOrder") != "Ascending" {
		t.Fatalf("unexpected sort %q %q", query.Get("SortBy"), query.Get("SortOrder"))
	}
	if query.Get("Recursive") != "true" || query.Get("Limit") != "100" {
		t.Fatalf("unexpected paging params")
	}
}

func TestItemsArtistFilterReplacesParent(t *testing.T) {
	var query url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, ItemsResponse{})
	})

	_, err := testClient(handler).Items(context.Background(), ItemsQuery{
		ArtistIDs:    []string{"artist-9"},
		IncludeTypes: []string{TypeMusicAlbum},
	})
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if query.Get("ArtistIds") != "artist-9" {
		t.Fatalf("expected artist filter")
	}
	if query.Get("ParentId") != "" {
		t.Fatalf("unexpected parent filter")
	}
}

func TestLatestDecodesBareArray(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/Items/Latest") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(t, w, []Item{{ID: "t1", Type: TypeAudio}})
	})

	items, err := testClient(handler).Latest(context.Background(), "lib1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestStreamURLTemplate(t *testing.T) {
	c := NewClient(Config{
		BaseURL:  "http://jellyfin.test",
		Token:    "token",
		UserID:   "user",
		DeviceID: "device 1",
	})

	raw := c.StreamURL("item-1", "session-1")
	if !strings.HasPrefix(raw, "http://jellyfin.test/Audio/item-1/universal?") {
		t.Fatalf("unexpected url prefix: %s", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("MaxStreamingBitrate") != "140000000" {
		t.Fatalf("unexpected bitrate")
	}
	if q.Get("Container") != containerFallbacks {
		t.Fatalf("unexpected container list %q", q.Get("Container"))
	}
	if q.Get("TranscodingContainer") != "ts" || q.Get("TranscodingProtocol") != "hls" || q.Get("AudioCodec") != "aac" {
		t.Fatalf("unexpected transcoding params")
	}
	if q.Get("PlaySessionId") != "session-1" || q.Get("EnableRemoteMedia") != "true" {
		t.Fatalf("unexpected session params")
	}
	if q.Get("DeviceId") != "device 1" {
		t.Fatalf("device id not decoded back: %q", q.Get("DeviceId"))
	}
	if !strings.Contains(raw, "DeviceId=device+1") && !strings.Contains(raw, "DeviceId=device%201") {
		t.Fatalf("device id not url encoded: %s", raw)
	}
}

func TestImageURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://jellyfin.test", Token: "token", UserID: "user"})
	raw := c.ImageURL("item-1", "tag-1", 500, 90)
	if !strings.Contains(raw, "/Items/item-1/Images/Primary") {
		t.Fatalf("unexpected image url: %s", raw)
	}
	parsed, _ := url.Parse(raw)
	if parsed.Query().Get("tag") != "tag-1" || parsed.Query().Get("maxHeight") != "500" {
		t.Fatalf("unexpected image params: %s", raw)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://jellyfin.test"})
	if c.Ready() {
		t.Fatalf("expected not ready")
	}
	_, err := c.UserViews(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUpstreamFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := testClient(handler).Items(context.Background(), ItemsQuery{ParentID: "lib1"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode json: %v", err)
	}
}

type roundTripper struct {
	handler http.Handler
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	respCh := make(chan *http.Response, 1)

	go func() {
		recorder := httptest.NewRecorder()
		if req.Body != nil {
			bodyBytes, _ := io.ReadAll(req.Body)
			_ = req.Body.Close()
			req.Body = io.NopCloser(strings.NewReader(string(bodyBytes)))
		}
		rt.handler.ServeHTTP(recorder, req)
		respCh <- recorder.Result()
	}()

	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case resp := <-respCh:
		return resp, nil
	}
}
