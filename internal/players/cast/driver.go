package cast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lantian699/jellyfin-android/internal/playback"
)

// Driver drives a cast receiver through its JSON-RPC control endpoint. The
// receiver owns the media transport; this driver only submits the queue and
// issues transport commands. Cast session negotiation is the receiver's
// concern.
type Driver struct {
	baseURL  string
	http     *http.Client
	username string
	password string

	mu      sync.Mutex
	urls    []string
	index   int
	playing bool
	events  chan playback.Event
}

// NewDriver creates a cast receiver driver.
func NewDriver(baseURL string, username string, password string, timeout time.Duration) (*Driver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base_url required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Driver{
		baseURL:  strings.TrimRight(baseURL, "/") + "/rpc",
		http:     &http.Client{Timeout: timeout},
		username: username,
		password: password,
		events:   make(chan playback.Event, 16),
	}, nil
}

func (d *Driver) Name() string { return playback.BackendCast }

// Load submits the whole URL list to the receiver in one replace-all call.
func (d *Driver) Load(urls []string, startIndex int) error {
	if startIndex < 0 || (len(urls) > 0 && startIndex >= len(urls)) {
		startIndex = 0
	}
	if _, err := d.rpc("Queue.Load", map[string]any{
		"items":      urls,
		"startIndex": startIndex,
	}); err != nil {
		return err
	}

	d.mu.Lock()
	d.urls = urls
	d.index = startIndex
	d.emitLocked(playback.Event{Kind: playback.EventRouteChanged, Player: d.Name(), Detail: "receiver queue loaded"})
	d.mu.Unlock()
	return nil
}

func (d *Driver) Play() error {
	if _, err := d.rpc("Player.Play", nil); err != nil {
		return err
	}
	d.mu.Lock()
	d.playing = true
	d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "playing"})
	d.mu.Unlock()

	go d.monitor()
	return nil
}

func (d *Driver) Pause() error {
	if _, err := d.rpc("Player.Pause", nil); err != nil {
		return err
	}
	d.setPlaying(false, "paused")
	return nil
}

func (d *Driver) Resume() error {
	if _, err := d.rpc("Player.Play", nil); err != nil {
		return err
	}
	d.setPlaying(true, "playing")
	return nil
}

func (d *Driver) Stop() error {
	_, err := d.rpc("Player.Stop", nil)
	d.mu.Lock()
	d.playing = false
	d.urls = nil
	d.index = 0
	d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "stopped"})
	d.mu.Unlock()
	return err
}

func (d *Driver) Position() (int64, int64, bool) {
	status, err := d.status()
	if err != nil {
		return 0, 0, false
	}
	return status.PositionMS, status.DurationMS, true
}

func (d *Driver) CurrentIndex() (int, bool) {
	status, err := d.status()
	if err != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.urls) == 0 {
			return 0, false
		}
		return d.index, true
	}
	return status.Index, true
}

func (d *Driver) Events() <-chan playback.Event { return d.events }

// monitor polls the receiver while playback is running, surfacing track
// changes and end-of-queue as events.
func (d *Driver) monitor() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		running := d.playing
		lastIndex := d.index
		d.mu.Unlock()
		if !running {
			return
		}

		status, err := d.status()
		if err != nil {
			d.mu.Lock()
			d.emitLocked(playback.Event{Kind: playback.EventError, Player: d.Name(), Detail: err.Error()})
			d.mu.Unlock()
			continue
		}

		d.mu.Lock()
		if !status.Playing {
			d.playing = false
			d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: "stopped"})
			d.mu.Unlock()
			return
		}
		if status.Index != lastIndex {
			d.index = status.Index
			d.emitLocked(playback.Event{Kind: playback.EventTrackChanged, Player: d.Name(), Index: status.Index})
		}
		d.mu.Unlock()
	}
}

type receiverStatus struct {
	Playing    bool  `json:"playing"`
	Index      int   `json:"index"`
	PositionMS int64 `json:"positionMs"`
	DurationMS int64 `json:"durationMs"`
}

func (d *Driver) status() (receiverStatus, error) {
	raw, err := d.rpc("Player.Status", nil)
	if err != nil {
		return receiverStatus{}, err
	}
	var status receiverStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return receiverStatus{}, err
	}
	return status, nil
}

func (d *Driver) setPlaying(playing bool, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = playing
	d.emitLocked(playback.Event{Kind: playback.EventStateChanged, Player: d.Name(), Status: status})
}

func (d *Driver) emitLocked(event playback.Event) {
	select {
	case d.events <- event:
	default:
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (d *Driver) rpc(method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      int(time.Now().UnixNano()),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, d.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.username != "" || d.password != "" {
		httpReq.SetBasicAuth(d.username, d.password)
	}

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("receiver error: %s", strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("receiver error: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
