package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/lantian699/jellyfin-android/internal/adapters/idgen"
	"github.com/lantian699/jellyfin-android/internal/adapters/mqttserver"
	"github.com/lantian699/jellyfin-android/internal/jellyfin"
	"github.com/lantian699/jellyfin-android/internal/playback"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler paho.MessageHandler) error
	Unsubscribe(topic string) error
}

// Config configures the browser module.
type Config struct {
	NodeID    string
	TopicBase string
	Name      string
}

// Module exposes the Jellyfin music tree and playback control over MQTT.
// It owns the captured queue and the backend switchboard; browse requests
// run concurrently while playback transitions are serialized.
type Module struct {
	log      *zap.Logger
	client   mqttClient
	catalog  catalog
	resolver *Resolver
	preparer *Preparer
	queue    *playback.Queue
	board    *playback.Switchboard
	config   Config
	cmdTopic string

	mu           sync.Mutex
	captured     []playback.Entry
	status       string
	stateVersion int64
	runCtx       context.Context
	wg           sync.WaitGroup
}

// NewModule creates a browser module. Missing server credentials do not
// fail construction; requests answer with an auth error until the catalog
// is configured.
func NewModule(log *zap.Logger, client *mqttserver.Client, catalog *jellyfin.Client, local playback.Driver, cast playback.Driver, cfg Config) (*Module, error) {
	if strings.TrimSpace(cfg.NodeID) == "" {
		return nil, errors.New("node_id required")
	}
	if strings.TrimSpace(cfg.TopicBase) == "" {
		cfg.TopicBase = jf.BaseTopic
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "Jellyfin Browser"
	}

	board, err := playback.NewSwitchboard(local, cast)
	if err != nil {
		return nil, err
	}

	return &Module{
		log:      log,
		client:   client,
		catalog:  catalog,
		resolver: NewResolver(catalog),
		preparer: NewPreparer(catalog, idgen.Generator{}),
		queue:    &playback.Queue{},
		board:    board,
		config:   cfg,
		cmdTopic: jf.TopicCommands(cfg.TopicBase, cfg.NodeID),
		status:   "stopped",
	}, nil
}

// Run starts the module.
func (m *Module) Run(ctx context.Context) error {
	m.mu.Lock()
	m.runCtx = ctx
	m.mu.Unlock()

	if err := m.publishPresence(); err != nil {
		return err
	}
	m.publishState()

	go m.runEventLoop(ctx)

	handler := func(_ paho.Client, msg paho.Message) {
		m.handleMessage(msg)
	}
	if err := m.client.Subscribe(m.cmdTopic, 1, handler); err != nil {
		return err
	}
	defer m.client.Unsubscribe(m.cmdTopic)

	<-ctx.Done()
	m.wg.Wait()
	return nil
}

func (m *Module) publishPresence() error {
	presence := jf.Presence{
		NodeID: m.config.NodeID,
		Kind:   "browser",
		Name:   m.config.Name,
		Caps: map[string]any{
			"browse":  true,
			"play":    true,
			"shuffle": true,
			"players": []string{playback.BackendLocal, playback.BackendCast},
		},
		TS: time.Now().Unix(),
	}
	payload, err := json.Marshal(presence)
	if err != nil {
		return err
	}
	return m.client.Publish(jf.TopicPresence(m.config.TopicBase, m.config.NodeID), 1, true, payload)
}

// publishState advances the state version and publishes the retained
// snapshot. Only mutation paths go through here; read-only status replies
// snapshot without bumping the version.
func (m *Module) publishState() {
	m.mu.Lock()
	m.stateVersion++
	m.mu.Unlock()

	payload, err := json.Marshal(m.snapshotState())
	if err != nil {
		return
	}
	_ = m.client.Publish(jf.TopicState(m.config.TopicBase, m.config.NodeID), 1, true, payload)
}

func (m *Module) publishEvent(eventType string, player string, detail string) {
	event := jf.Event{Type: eventType, Player: player, Detail: detail, TS: time.Now().Unix()}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = m.client.Publish(jf.TopicEvents(m.config.TopicBase, m.config.NodeID), 1, false, payload)
}

// snapshotState assembles the retained node state from the queue, the
// switchboard and the active backend's position.
func (m *Module) snapshotState() jf.BrowserState {
	m.mu.Lock()
	version := m.stateVersion
	status := m.status
	m.mu.Unlock()

	state := jf.BrowserState{
		Player:       m.board.ActiveName(),
		StateVersion: version,
		TS:           time.Now().Unix(),
	}

	queueState := m.queue.Summary()
	state.Queue = &queueState
	if current, ok := m.queue.Current(); ok {
		state.Current = &jf.CurrentItemState{
			NodeID: current.NodeID,
			ItemID: current.ItemID,
			Title:  current.Title,
		}
	}

	playbackState := jf.PlaybackState{Status: status}
	if pos, dur, ok := m.board.Active().Position(); ok {
		playbackState.PositionMS = pos
		playbackState.DurationMS = dur
	}
	state.Playback = &playbackState
	return state
}

// runEventLoop consumes both backends' event streams and folds them into
// the retained state. Events from the inactive backend only update its
// bookkeeping, never the published status.
func (m *Module) runEventLoop(ctx context.Context) {
	local, cast := m.board.Drivers()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-local.Events():
			m.handleDriverEvent(event)
		case event := <-cast.Events():
			m.handleDriverEvent(event)
		}
	}
}

func (m *Module) handleDriverEvent(event playback.Event) {
	if event.Player != m.board.ActiveName() {
		return
	}

	switch event.Kind {
	case playback.EventTrackChanged:
		m.queue.SetIndex(event.Index)
		m.publishEvent("playback.trackChanged", event.Player, "")
	case playback.EventStateChanged:
		m.mu.Lock()
		m.status = event.Status
		m.mu.Unlock()
		if event.Status == "stopped" {
			m.board.MarkStarted(false)
		}
		m.publishEvent("playback.stateChanged", event.Player, event.Status)
	case playback.EventError:
		m.log.Warn("backend error", zap.String("player", event.Player), zap.String("detail", event.Detail))
		m.publishEvent("playback.error", event.Player, event.Detail)
	case playback.EventRouteChanged:
		m.publishEvent("player.routeChanged", event.Player, event.Detail)
	}
	m.publishState()
}

func (m *Module) handleMessage(msg paho.Message) {
	var cmd jf.CommandEnvelope
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		m.log.Warn("invalid command", zap.Error(err))
		return
	}

	// Browse requests hit the catalog and may block; each runs in its own
	// goroutine. Playback transitions stay on the subscriber callback and
	// serialize on the module mutex inside dispatch.
	if strings.HasPrefix(cmd.Type, "browse.") {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.finish(cmd, m.dispatch(cmd))
		}()
		return
	}
	m.finish(cmd, m.dispatch(cmd))
}

// finish publishes the reply unless the module has been cancelled. A
// cancelled request unit never replies.
func (m *Module) finish(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) {
	if m.context().Err() != nil {
		return
	}
	if cmd.ReplyTo == "" {
		return
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		m.log.Error("marshal reply", zap.Error(err))
		return
	}
	if err := m.client.Publish(cmd.ReplyTo, 1, false, payload); err != nil {
		m.log.Error("publish reply", zap.Error(err))
	}
}

func (m *Module) context() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runCtx == nil {
		return context.Background()
	}
	return m.runCtx
}

func (m *Module) dispatch(cmd jf.CommandEnvelope) jf.ReplyEnvelope {
	reply := jf.ReplyEnvelope{ID: cmd.ID, Type: "ack", OK: true, TS: time.Now().Unix()}

	switch cmd.Type {
	case "browse.children":
		return m.handleChildren(cmd, reply)
	case "browse.play":
		return m.handlePlay(cmd, reply)
	case "player.switch":
		return m.handleSwitch(cmd, reply)
	case "player.status":
		return m.handleStatus(cmd, reply)
	case "playback.pause":
		return m.handleTransport(cmd, reply, "paused", m.board.Active().Pause)
	case "playback.resume":
		return m.handleTransport(cmd, reply, "playing", m.board.Active().Resume)
	case "playback.stop":
		return m.handleStop(cmd, reply)
	default:
		return errorReply(cmd, jf.CodeInvalid, "unsupported command")
	}
}

func (m *Module) handleChildren(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) jf.ReplyEnvelope {
	var body jf.BrowseChildrenBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, jf.CodeInvalid, "invalid body")
	}
	// Gated before resolution: the library section menu is static, but an
	// unconfigured server session must fail every browse request.
	if !m.catalog.Ready() {
		return errorReply(cmd, jf.CodeAuth, "server session not configured")
	}

	id, err := jf.DecodeNodeID(body.NodeID)
	if err != nil {
		return errorReply(cmd, jf.CodeNotFound, err.Error())
	}

	nodes, playables, err := m.resolver.Children(m.context(), id)
	if err != nil {
		return catalogError(cmd, err)
	}

	// Every successful listing replaces the capture, including listings
	// with no playables. Play always addresses the last browsed container.
	m.mu.Lock()
	m.captured = playables
	m.mu.Unlock()

	payload, _ := json.Marshal(jf.BrowseChildrenReply{NodeID: body.NodeID, Children: nodes})
	reply.Body = payload
	return reply
}

func (m *Module) handlePlay(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) jf.ReplyEnvelope {
	var body jf.BrowsePlayBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, jf.CodeInvalid, "invalid body")
	}
	if !m.catalog.Ready() {
		return errorReply(cmd, jf.CodeAuth, "server session not configured")
	}

	m.mu.Lock()
	captured := make([]playback.Entry, len(m.captured))
	copy(captured, m.captured)
	m.mu.Unlock()

	prepared, err := m.preparer.Prepare(captured, body.NodeID)
	if err != nil {
		return errorReply(cmd, jf.CodeInvalid, err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	driver := m.board.Active()
	urls := make([]string, len(prepared.Entries))
	for i, entry := range prepared.Entries {
		urls[i] = entry.StreamURL
	}
	if err := driver.Load(urls, prepared.StartIndex); err != nil {
		return errorReply(cmd, jf.CodeUpstream, err.Error())
	}
	if err := driver.Play(); err != nil {
		return errorReply(cmd, jf.CodeUpstream, err.Error())
	}

	m.queue.Replace(prepared.Entries, prepared.StartIndex, prepared.Shuffled)
	m.board.MarkStarted(true)
	m.status = "playing"

	payload, _ := json.Marshal(jf.BrowsePlayReply{
		Player:        m.board.ActiveName(),
		QueueLength:   int64(len(prepared.Entries)),
		StartIndex:    int64(prepared.StartIndex),
		Shuffled:      prepared.Shuffled,
		PlaySessionID: prepared.PlaySessionID,
	})
	reply.Body = payload
	go m.publishState()
	return reply
}

func (m *Module) handleSwitch(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) jf.ReplyEnvelope {
	var body jf.PlayerSwitchBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, jf.CodeInvalid, "invalid body")
	}

	m.mu.Lock()
	restarted, err := m.board.Switch(body.Player, m.queue)
	if err == nil && restarted {
		m.status = "playing"
	} else if err == nil && !m.board.Started() {
		m.status = "stopped"
	}
	m.mu.Unlock()
	if err != nil {
		return errorReply(cmd, jf.CodeInvalid, err.Error())
	}

	payload, _ := json.Marshal(jf.PlayerSwitchReply{Player: m.board.ActiveName(), Restarted: restarted})
	reply.Body = payload
	m.publishEvent("player.switched", m.board.ActiveName(), "")
	m.publishState()
	return reply
}

func (m *Module) handleStatus(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) jf.ReplyEnvelope {
	payload, _ := json.Marshal(m.snapshotState())
	reply.Body = payload
	return reply
}

func (m *Module) handleTransport(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope, status string, action func() error) jf.ReplyEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := action(); err != nil {
		return errorReply(cmd, jf.CodeUpstream, err.Error())
	}
	m.status = status
	go m.publishState()
	return reply
}

func (m *Module) handleStop(cmd jf.CommandEnvelope, reply jf.ReplyEnvelope) jf.ReplyEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.board.Active().Stop(); err != nil {
		return errorReply(cmd, jf.CodeUpstream, err.Error())
	}
	m.board.MarkStarted(false)
	m.status = "stopped"
	go m.publishState()
	return reply
}

// catalogError maps resolver failures onto protocol error codes: missing
// credentials are an auth failure, unknown identifiers a lookup failure,
// everything else an upstream failure.
func catalogError(cmd jf.CommandEnvelope, err error) jf.ReplyEnvelope {
	switch {
	case errors.Is(err, jellyfin.ErrNotConfigured):
		return errorReply(cmd, jf.CodeAuth, "server session not configured")
	case errors.Is(err, jf.ErrUnknownNode):
		return errorReply(cmd, jf.CodeNotFound, err.Error())
	default:
		return errorReply(cmd, jf.CodeUpstream, err.Error())
	}
}

func errorReply(cmd jf.CommandEnvelope, code string, message string) jf.ReplyEnvelope {
	return jf.ReplyEnvelope{
		ID:   cmd.ID,
		Type: "error",
		OK:   false,
		TS:   time.Now().Unix(),
		Err:  &jf.ReplyError{Code: code, Message: message},
	}
}
