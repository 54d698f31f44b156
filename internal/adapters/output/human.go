package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/lantian699/jellyfin-android/internal/core"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case core.NodesResult:
		return printNodes(data)
	case core.ChildrenResult:
		return printChildren(data)
	case core.PlayResult:
		return printPlay(data)
	case core.SwitchResult:
		return printSwitch(data)
	case core.StatusResult:
		return printStatus(data)
	case core.RawResult:
		return printRaw(data)
	default:
		_, err := fmt.Fprintln(os.Stdout, "ok")
		return err
	}
}

func printNodes(result core.NodesResult) error {
	rows := pterm.TableData{{"NAME", "KIND", "NODE_ID"}}
	for _, node := range result.Nodes {
		rows = append(rows, []string{node.Name, node.Kind, node.NodeID})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func printChildren(result core.ChildrenResult) error {
	rows := pterm.TableData{{"TITLE", "SUBTITLE", "PLAY", "NODE_ID"}}
	for _, child := range result.Children {
		play := ""
		if child.Playable {
			play = "*"
		}
		rows = append(rows, []string{child.Title, child.Subtitle, play, child.ID})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(os.Stdout, "%d children of %s\n", len(result.Children), result.NodeID)
	return err
}

func printPlay(result core.PlayResult) error {
	shuffle := ""
	if result.Play.Shuffled {
		shuffle = " shuffled"
	}
	_, err := fmt.Fprintf(os.Stdout, "playing on %s: %d tracks from index %d%s (session %s)\n",
		result.Play.Player, result.Play.QueueLength, result.Play.StartIndex, shuffle, result.Play.PlaySessionID)
	return err
}

func printSwitch(result core.SwitchResult) error {
	if result.Switch.Restarted {
		_, err := fmt.Fprintf(os.Stdout, "switched to %s, playback restarted\n", result.Switch.Player)
		return err
	}
	_, err := fmt.Fprintf(os.Stdout, "active player: %s\n", result.Switch.Player)
	return err
}

func printStatus(result core.StatusResult) error {
	status := "stopped"
	position := ""
	item := ""
	queue := ""

	if result.State.Playback != nil {
		status = result.State.Playback.Status
		position = formatPosition(result.State.Playback.PositionMS, result.State.Playback.DurationMS)
	}
	if result.State.Current != nil {
		item = formatItem(result.State.Current)
	}
	if result.State.Queue != nil {
		queue = fmt.Sprintf("Queue: %d tracks (index %d)", result.State.Queue.Length, result.State.Queue.Index)
		if result.State.Queue.Shuffle {
			queue += " shuffled"
		}
	}

	line := strings.TrimSpace(fmt.Sprintf("%s  [%s on %s]  %s  %s", result.Browser.Name, status, result.State.Player, item, position))
	if _, err := fmt.Fprintln(os.Stdout, line); err != nil {
		return err
	}
	if queue != "" {
		_, err := fmt.Fprintln(os.Stdout, queue)
		return err
	}
	return nil
}

func printRaw(result core.RawResult) error {
	raw, err := rawBytes(result.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(raw))
	return err
}

func rawBytes(data any) ([]byte, error) {
	switch val := data.(type) {
	case json.RawMessage:
		return val, nil
	case []byte:
		return val, nil
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func formatPosition(pos, dur int64) string {
	if pos == 0 && dur == 0 {
		return ""
	}
	if dur > 0 {
		percent := (pos * 100) / dur
		return fmt.Sprintf("%s / %s (%d%%)", formatMS(pos), formatMS(dur), percent)
	}
	return formatMS(pos)
}

func formatMS(ms int64) string {
	if ms <= 0 {
		return "0:00"
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func formatItem(current *jf.CurrentItemState) string {
	if current.Title != "" {
		return current.Title
	}
	return current.ItemID
}
