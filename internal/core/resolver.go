package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lantian699/jellyfin-android/internal/ports"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

// Resolver resolves selectors to node presence.
type Resolver struct {
	Presence ports.Broker
	Config   Config
}

// ResolveBrowser resolves a browser selector using config defaults. With no
// selector and exactly one browser on the bus, that browser wins.
func (r Resolver) ResolveBrowser(ctx context.Context, selector string) (jf.Presence, error) {
	if selector == "" {
		selector = r.Config.Defaults.Browser
	}

	presence, err := r.Presence.ListPresence(ctx)
	if err != nil {
		return jf.Presence{}, WrapError(ExitRuntime, "list presence", err)
	}

	filtered := filterPresenceByKind(presence, "browser")
	if selector == "" {
		if len(filtered) == 1 {
			return filtered[0], nil
		}
		return jf.Presence{}, &CLIError{Code: ExitUsage, Msg: "selector required"}
	}
	return resolveSelector(selector, filtered, r.Config.Aliases)
}

func filterPresenceByKind(presence []jf.Presence, kind string) []jf.Presence {
	if kind == "" {
		return presence
	}
	out := make([]jf.Presence, 0, len(presence))
	for _, p := range presence {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func resolveSelector(selector string, presence []jf.Presence, aliases map[string]string) (jf.Presence, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return jf.Presence{}, &CLIError{Code: ExitUsage, Msg: "selector required"}
	}

	if alias, ok := aliases[selector]; ok {
		selector = alias
	}

	matches := make([]jf.Presence, 0)
	for _, p := range presence {
		if strings.EqualFold(p.Name, selector) || strings.EqualFold(p.NodeID, selector) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) == 0 {
		return jf.Presence{}, &CLIError{Code: ExitNotFound, Msg: fmt.Sprintf("no match for %q", selector)}
	}
	return jf.Presence{}, &CLIError{Code: ExitUsage, Msg: fmt.Sprintf("ambiguous selector %q: %s", selector, suggestionList(matches))}
}

func suggestionList(matches []jf.Presence) string {
	names := make([]string, 0, len(matches))
	for _, p := range matches {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.NodeID))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
