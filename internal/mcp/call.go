package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aethervault/aether-core/internal/verrors"
)

const (
	pollInterval  = 250 * time.Millisecond
	waitLogEvery  = 5 * time.Second
)

// route identifies which server and original tool name a prefixed
// "mcp__<server>__<tool>" route resolves to.
type route struct {
	serverName string
	toolName   string
}

// parseRoute splits "mcp__<server>__<tool>" into its parts. The
// server name may not contain underscores (the underscore is the
// route delimiter), so the first split suffices.
func parseRoute(prefixed string) (route, bool) {
	const prefix = "mcp__"
	if !strings.HasPrefix(prefixed, prefix) {
		return route{}, false
	}
	rest := strings.TrimPrefix(prefixed, prefix)
	serverName, toolName, ok := strings.Cut(rest, "__")
	if !ok || serverName == "" || toolName == "" {
		return route{}, false
	}
	return route{serverName: serverName, toolName: toolName}, true
}

// callTool sends tools/call and polls for the matching response,
// logging a "still waiting" line every 5s and marking the server dead
// on StdioClosed.
func callTool(srv *server, toolName string, args map[string]any) (string, bool, error) {
	id := srv.nextRequestID()
	if err := srv.send(request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "tools/call",
		Params:  callToolParams{Name: toolName, Arguments: args},
	}); err != nil {
		return "", false, err
	}

	var waited time.Duration
	for {
		select {
		case ev, ok := <-srv.events:
			if !ok {
				srv.setState(StateDead)
				return "", false, fmt.Errorf("mcp: %q stdio closed waiting for tool call", srv.cfg.Name)
			}
			switch ev.kind {
			case eventStdioClosed:
				srv.setState(StateDead)
				return "", false, fmt.Errorf("mcp: %q stdio closed waiting for tool call", srv.cfg.Name)
			case eventError:
				return "", false, ev.err
			case eventMessage:
				var resp response
				if err := json.Unmarshal(ev.body, &resp); err != nil {
					return "", false, verrors.McpProtocol(fmt.Sprintf("invalid message from %q: %v", srv.cfg.Name, err))
				}
				if resp.ID == nil {
					continue // notification, discard
				}
				if *resp.ID != id {
					return "", false, verrors.McpProtocol(fmt.Sprintf("%q responded with id %d, expected %d", srv.cfg.Name, *resp.ID, id))
				}
				if resp.Error != nil {
					return "", false, fmt.Errorf("mcp '%s' error %d: %s", srv.cfg.Name, resp.Error.Code, resp.Error.Message)
				}
				var result callToolResult
				if err := json.Unmarshal(resp.Result, &result); err != nil {
					return "", false, verrors.McpProtocol(fmt.Sprintf("%q tool result: %v", srv.cfg.Name, err))
				}
				texts := make([]string, len(result.Content))
				for i, c := range result.Content {
					texts[i] = c.Text
				}
				return strings.Join(texts, "\n"), result.IsError, nil
			}
		case <-time.After(pollInterval):
			waited += pollInterval
			if waited%waitLogEvery == 0 {
				srv.log.Info("mcp still waiting for tool call", "server", srv.cfg.Name, "tool", toolName, "waited", waited)
			}
		}
	}
}
