package core

import (
	"context"
	"encoding/json"

	"github.com/lantian699/jellyfin-android/internal/ports"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// Service orchestrates jf CLI use cases.
type Service struct {
	Broker   ports.Broker
	Resolver Resolver
	Clock    ports.Clock
	IDGen    ports.IDGen
	Config   Config
}

// ListNodes returns presence entries with an optional kind filter.
func (s Service) ListNodes(ctx context.Context, kind string) (NodesResult, error) {
	nodes, err := s.Broker.ListPresence(ctx)
	if err != nil {
		return NodesResult{}, WrapError(ExitRuntime, "list nodes", err)
	}
	if kind != "" {
		filtered := nodes[:0]
		for _, node := range nodes {
			if node.Kind == kind {
				filtered = append(filtered, node)
			}
		}
		nodes = filtered
	}
	return NodesResult{Nodes: nodes}, nil
}

// BrowseChildren lists the children of a browse node.
func (s Service) BrowseChildren(ctx context.Context, selector string, nodeID string) (ChildrenResult, error) {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return ChildrenResult{}, err
	}
	if nodeID == "" {
		nodeID = jf.RootID().String()
	}

	reply, err := s.publish(ctx, browser.NodeID, "browse.children", jf.BrowseChildrenBody{NodeID: nodeID})
	if err != nil {
		return ChildrenResult{}, err
	}

	var body jf.BrowseChildrenReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return ChildrenResult{}, WrapError(ExitRuntime, "decode browse reply", err)
	}
	return ChildrenResult{BrowserID: browser.NodeID, NodeID: body.NodeID, Children: body.Children}, nil
}

// Play starts playback of a playable node out of the last browsed listing.
func (s Service) Play(ctx context.Context, selector string, nodeID string) (PlayResult, error) {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return PlayResult{}, err
	}

	reply, err := s.publish(ctx, browser.NodeID, "browse.play", jf.BrowsePlayBody{NodeID: nodeID})
	if err != nil {
		return PlayResult{}, err
	}

	var body jf.BrowsePlayReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return PlayResult{}, WrapError(ExitRuntime, "decode play reply", err)
	}
	return PlayResult{BrowserID: browser.NodeID, Play: body}, nil
}

// SwitchPlayer makes the named backend current on the browser.
func (s Service) SwitchPlayer(ctx context.Context, selector string, player string) (SwitchResult, error) {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return SwitchResult{}, err
	}

	reply, err := s.publish(ctx, browser.NodeID, "player.switch", jf.PlayerSwitchBody{Player: player})
	if err != nil {
		return SwitchResult{}, err
	}

	var body jf.PlayerSwitchReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return SwitchResult{}, WrapError(ExitRuntime, "decode switch reply", err)
	}
	return SwitchResult{BrowserID: browser.NodeID, Switch: body}, nil
}

// Status returns browser state, preferring a live status reply and falling
// back to retained state when the node does not answer.
func (s Service) Status(ctx context.Context, selector string) (StatusResult, error) {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return StatusResult{}, err
	}

	reply, err := s.publish(ctx, browser.NodeID, "player.status", jf.PlayerStatusBody{})
	if err == nil {
		var state jf.BrowserState
		if decodeErr := json.Unmarshal(reply.Body, &state); decodeErr == nil {
			return StatusResult{Browser: browser, State: state}, nil
		}
	}

	state, err := s.Broker.GetBrowserState(ctx, browser.NodeID)
	if err != nil {
		return StatusResult{}, WrapError(ExitRuntime, "get browser state", err)
	}
	return StatusResult{Browser: browser, State: state}, nil
}

// WatchStatus streams state and events for a browser.
func (s Service) WatchStatus(ctx context.Context, selector string) (<-chan jf.BrowserState, <-chan jf.Event, <-chan error, error) {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return nil, nil, nil, err
	}
	states, events, errs := s.Broker.WatchBrowser(ctx, browser.NodeID)
	return states, events, errs, nil
}

// PlaybackPause sends playback.pause.
func (s Service) PlaybackPause(ctx context.Context, selector string) error {
	return s.simplePlayback(ctx, selector, "playback.pause")
}

// PlaybackResume sends playback.resume.
func (s Service) PlaybackResume(ctx context.Context, selector string) error {
	return s.simplePlayback(ctx, selector, "playback.resume")
}

// PlaybackStop sends playback.stop.
func (s Service) PlaybackStop(ctx context.Context, selector string) error {
	return s.simplePlayback(ctx, selector, "playback.stop")
}

func (s Service) simplePlayback(ctx context.Context, selector string, cmdType string) error {
	browser, err := s.Resolver.ResolveBrowser(ctx, selector)
	if err != nil {
		return err
	}
	_, err = s.publish(ctx, browser.NodeID, cmdType, struct{}{})
	return err
}

func (s Service) publish(ctx context.Context, nodeID string, cmdType string, body any) (jf.ReplyEnvelope, error) {
	cmd, err := jf.NewCommand(cmdType, body)
	if err != nil {
		return jf.ReplyEnvelope{}, WrapError(ExitRuntime, "build command", err)
	}
	cmd.ID = s.IDGen.NewID()
	cmd.TS = s.Clock.NowUnix()
	cmd.From = s.Config.Identity
	cmd.ReplyTo = s.Broker.ReplyTopic()

	reply, err := s.Broker.PublishCommand(ctx, nodeID, cmd)
	if err != nil {
		return jf.ReplyEnvelope{}, WrapError(ExitRuntime, "publish command", err)
	}
	if reply.Err != nil {
		return jf.ReplyEnvelope{}, ErrorForReplyCode(reply.Err.Code, reply.Err.Message)
	}
	return reply, nil
}
