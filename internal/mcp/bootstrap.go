package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/aethervault/aether-core/internal/verrors"
)

var validServerName = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

const bootstrapTimeout = 10 * time.Second

// bootstrap validates the server name, sends initialize +
// notifications/initialized + tools/list, and populates srv.tools. A
// server whose bootstrap fails is the caller's to skip, not fatal to
// the registry.
func bootstrap(srv *server) error {
	if srv.cfg.Name == "" || !validServerName.MatchString(srv.cfg.Name) {
		return fmt.Errorf("mcp: invalid server name %q: must be non-empty, alphanumeric-or-hyphen", srv.cfg.Name)
	}
	srv.setState(StateBootstrapping)

	initID := srv.nextRequestID()
	if err := srv.send(request{
		JSONRPC: "2.0",
		ID:      initID,
		Method:  "initialize",
		Params: initializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{},
			ClientInfo:      clientInfo{Name: "aether-core", Version: "1"},
		},
	}); err != nil {
		return err
	}
	if _, err := awaitResponse(srv, initID, bootstrapTimeout); err != nil {
		return fmt.Errorf("mcp: %q initialize: %w", srv.cfg.Name, err)
	}

	if err := srv.send(notification{JSONRPC: "2.0", Method: "notifications/initialized"}); err != nil {
		return err
	}

	listID := srv.nextRequestID()
	if err := srv.send(request{JSONRPC: "2.0", ID: listID, Method: "tools/list"}); err != nil {
		return err
	}
	result, err := awaitResponse(srv, listID, bootstrapTimeout)
	if err != nil {
		return fmt.Errorf("mcp: %q tools/list: %w", srv.cfg.Name, err)
	}

	var listed toolsListResult
	if err := json.Unmarshal(result, &listed); err != nil {
		return verrors.McpProtocol(fmt.Sprintf("%q tools/list result: %v", srv.cfg.Name, err))
	}
	for _, t := range listed.Tools {
		srv.tools[t.Name] = t
	}
	srv.setState(StateReady)
	return nil
}

// awaitResponse blocks for the response matching id, surfacing a
// protocol error for any id mismatch or an RPC error object.
func awaitResponse(srv *server, id int64, timeout time.Duration) (json.RawMessage, error) {
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-srv.events:
			if !ok {
				return nil, fmt.Errorf("mcp: %q stdio closed during bootstrap", srv.cfg.Name)
			}
			switch ev.kind {
			case eventStdioClosed:
				srv.setState(StateDead)
				return nil, fmt.Errorf("mcp: %q stdio closed", srv.cfg.Name)
			case eventError:
				return nil, ev.err
			case eventMessage:
				var resp response
				if err := json.Unmarshal(ev.body, &resp); err != nil {
					return nil, verrors.McpProtocol(fmt.Sprintf("invalid message from %q: %v", srv.cfg.Name, err))
				}
				if resp.ID == nil {
					continue // notification, discard
				}
				if *resp.ID != id {
					return nil, verrors.McpProtocol(fmt.Sprintf("%q responded with id %d, expected %d", srv.cfg.Name, *resp.ID, id))
				}
				if resp.Error != nil {
					return nil, fmt.Errorf("mcp %q error %d: %s", srv.cfg.Name, resp.Error.Code, resp.Error.Message)
				}
				return resp.Result, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("mcp: %q timed out waiting for response %d", srv.cfg.Name, id)
		}
	}
}
