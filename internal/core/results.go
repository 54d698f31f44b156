package core

import "github.com/lantian699/jellyfin-android/pkg/jf"

// NodesResult holds a list of presence records.
type NodesResult struct {
	Nodes []jf.Presence
}

// ChildrenResult holds a resolved browse listing.
type ChildrenResult struct {
	BrowserID string
	NodeID    string
	Children  []jf.Node
}

// PlayResult reports a started playback queue.
type PlayResult struct {
	BrowserID string
	Play      jf.BrowsePlayReply
}

// SwitchResult reports the active player after a switch.
type SwitchResult struct {
	BrowserID string
	Switch    jf.PlayerSwitchReply
}

// StatusResult holds browser presence and state.
type StatusResult struct {
	Browser jf.Presence
	State   jf.BrowserState
}

// RawResult holds arbitrary JSON data for output.
type RawResult struct {
	Data any
}
