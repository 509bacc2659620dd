package mcp

import "testing"

func TestParseRoute(t *testing.T) {
	rt, ok := parseRoute("mcp__diagrams__render")
	if !ok {
		t.Fatal("expected ok")
	}
	if rt.serverName != "diagrams" || rt.toolName != "render" {
		t.Errorf("got %+v", rt)
	}
}

func TestParseRouteRejectsMissingPrefix(t *testing.T) {
	if _, ok := parseRoute("diagrams__render"); ok {
		t.Error("expected rejection without mcp__ prefix")
	}
}

func TestParseRouteRejectsMissingDelimiter(t *testing.T) {
	if _, ok := parseRoute("mcp__diagramsrender"); ok {
		t.Error("expected rejection without __ delimiter")
	}
}

func TestValidServerName(t *testing.T) {
	if !validServerName.MatchString("diagram-server1") {
		t.Error("expected hyphen+alphanumeric name to validate")
	}
	if validServerName.MatchString("bad_name") {
		t.Error("underscore is the route delimiter, must be rejected in server names")
	}
}
