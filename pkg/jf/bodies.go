package jf

// Node is one resolved browse node returned to clients.
type Node struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	IconURL  string     `json:"iconUrl,omitempty"`
	Playable bool       `json:"playable"`
	Extras   *NodeExtra `json:"extras,omitempty"`
}

// NodeExtra carries track display metadata.
type NodeExtra struct {
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"albumArtist,omitempty"`
	ArtURL      string `json:"artUrl,omitempty"`
	TrackIndex  int32  `json:"trackIndex,omitempty"`
}

// BrowseChildrenBody is the payload for browse.children.
type BrowseChildrenBody struct {
	NodeID string `json:"nodeId"`
}

// BrowseChildrenReply lists the children of a browse node.
type BrowseChildrenReply struct {
	NodeID   string `json:"nodeId"`
	Children []Node `json:"children"`
}

// BrowsePlayBody is the payload for browse.play. The node id must address
// a playable child of the most recently browsed container, or carry the
// shuffle marker.
type BrowsePlayBody struct {
	NodeID string `json:"nodeId"`
}

// BrowsePlayReply reports the prepared queue.
type BrowsePlayReply struct {
	Player        string `json:"player"`
	QueueLength   int64  `json:"queueLength"`
	StartIndex    int64  `json:"startIndex"`
	Shuffled      bool   `json:"shuffled"`
	PlaySessionID string `json:"playSessionId"`
}

// PlayerSwitchBody is the payload for player.switch.
type PlayerSwitchBody struct {
	Player string `json:"player"`
}

// PlayerSwitchReply reports the active backend after a switch.
type PlayerSwitchReply struct {
	Player    string `json:"player"`
	Restarted bool   `json:"restarted"`
}

// PlayerStatusBody is the payload for player.status.
type PlayerStatusBody struct{}
