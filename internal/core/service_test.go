package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lantian699/jellyfin-android/pkg/jf"
)

type stubClock struct{}

func (stubClock) NowUnix() int64 { return 100 }

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "id-1" }

type stubBroker struct {
	presence []jf.Presence
	replies  map[string]jf.ReplyEnvelope
	state    jf.BrowserState

	lastNode string
	lastCmd  jf.CommandEnvelope
}

func (s *stubBroker) ReplyTopic() string { return "jf/v1/reply/tester" }

func (s *stubBroker) PublishCommand(ctx context.Context, nodeID string, cmd jf.CommandEnvelope) (jf.ReplyEnvelope, error) {
	s.lastNode = nodeID
	s.lastCmd = cmd
	reply, ok := s.replies[cmd.Type]
	if !ok {
		return jf.ReplyEnvelope{}, errors.New("no reply")
	}
	return reply, nil
}

func (s *stubBroker) ListPresence(ctx context.Context) ([]jf.Presence, error) {
	return s.presence, nil
}

func (s *stubBroker) GetBrowserState(ctx context.Context, nodeID string) (jf.BrowserState, error) {
	return s.state, nil
}

func (s *stubBroker) WatchBrowser(ctx context.Context, nodeID string) (<-chan jf.BrowserState, <-chan jf.Event, <-chan error) {
	stateCh := make(chan jf.BrowserState)
	eventCh := make(chan jf.Event)
	errCh := make(chan error)
	close(stateCh)
	close(eventCh)
	close(errCh)
	return stateCh, eventCh, errCh
}

func reply(t *testing.T, body any) jf.ReplyEnvelope {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return jf.ReplyEnvelope{OK: true, Body: data}
}

func newTestService(broker *stubBroker) Service {
	broker.presence = []jf.Presence{{NodeID: "browser-main", Kind: "browser", Name: "Main"}}
	return Service{
		Broker:   broker,
		Resolver: Resolver{Presence: broker},
		Clock:    stubClock{},
		IDGen:    stubIDGen{},
		Config:   Config{Identity: "jf-cli"},
	}
}

func TestBrowseChildrenDecoratesCommand(t *testing.T) {
	broker := &stubBroker{replies: map[string]jf.ReplyEnvelope{
		"browse.children": reply(t, jf.BrowseChildrenReply{
			NodeID:   "root",
			Children: []jf.Node{{ID: "library|lib1", Title: "Music"}},
		}),
	}}
	service := newTestService(broker)

	result, err := service.BrowseChildren(context.Background(), "Main", "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}

	if broker.lastNode != "browser-main" {
		t.Fatalf("expected command sent to browser-main, got %q", broker.lastNode)
	}
	if broker.lastCmd.ID != "id-1" || broker.lastCmd.TS != 100 {
		t.Fatalf("expected decorated envelope, got %+v", broker.lastCmd)
	}
	if broker.lastCmd.From != "jf-cli" {
		t.Fatalf("expected identity on command")
	}
	if broker.lastCmd.ReplyTo != "jf/v1/reply/tester" {
		t.Fatalf("expected reply topic on command")
	}

	var body jf.BrowseChildrenBody
	if err := json.Unmarshal(broker.lastCmd.Body, &body); err != nil {
		t.Fatalf("decode command body: %v", err)
	}
	if body.NodeID != jf.RootID().String() {
		t.Fatalf("expected empty node to default to root, got %q", body.NodeID)
	}

	if len(result.Children) != 1 || result.Children[0].ID != "library|lib1" {
		t.Fatalf("unexpected children: %+v", result.Children)
	}
}

func TestPlayDecodesReply(t *testing.T) {
	broker := &stubBroker{replies: map[string]jf.ReplyEnvelope{
		"browse.play": reply(t, jf.BrowsePlayReply{
			Player:      "local",
			QueueLength: 3,
			StartIndex:  1,
		}),
	}}
	service := newTestService(broker)

	result, err := service.Play(context.Background(), "", "songs|lib1|t2")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if result.Play.Player != "local" || result.Play.QueueLength != 3 || result.Play.StartIndex != 1 {
		t.Fatalf("unexpected play reply: %+v", result.Play)
	}
}

func TestSwitchPlayer(t *testing.T) {
	broker := &stubBroker{replies: map[string]jf.ReplyEnvelope{
		"player.switch": reply(t, jf.PlayerSwitchReply{Player: "cast", Restarted: true}),
	}}
	service := newTestService(broker)

	result, err := service.SwitchPlayer(context.Background(), "", "cast")
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if result.Switch.Player != "cast" || !result.Switch.Restarted {
		t.Fatalf("unexpected switch reply: %+v", result.Switch)
	}
}

func TestStatusFallsBackToRetainedState(t *testing.T) {
	broker := &stubBroker{
		replies: map[string]jf.ReplyEnvelope{},
		state:   jf.BrowserState{Player: "local", Playback: &jf.PlaybackState{Status: "paused"}},
	}
	service := newTestService(broker)

	result, err := service.Status(context.Background(), "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.State.Player != "local" || result.State.Playback == nil || result.State.Playback.Status != "paused" {
		t.Fatalf("expected retained state, got %+v", result.State)
	}
}

func TestReplyErrorMapsToExitCode(t *testing.T) {
	broker := &stubBroker{replies: map[string]jf.ReplyEnvelope{
		"browse.play": {OK: false, Err: &jf.ReplyError{Code: "NOT_FOUND", Message: "no such node"}},
	}}
	service := newTestService(broker)

	_, err := service.Play(context.Background(), "", "songs|lib1|zz")
	if err == nil {
		t.Fatalf("expected error")
	}
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T", err)
	}
	if cliErr.Code != ExitNotFound {
		t.Fatalf("expected ExitNotFound, got %d", cliErr.Code)
	}
}
