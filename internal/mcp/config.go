package mcp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// serversFile is the on-disk shape of an MCP server list, e.g.:
//
//	servers:
//	  - name: diagrams
//	    command: diagram-mcp
//	    args: ["--stdio"]
//	    env: ["DIAGRAM_CACHE=/tmp/diagrams"]
type serversFile struct {
	Servers []Config `yaml:"servers"`
}

// LoadServers reads a YAML server list from path, the shape the agent
// loop hands to Registry.Spawn for each entry.
func LoadServers(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mcp: read server config %s: %w", path, err)
	}
	var f serversFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("mcp: parse server config %s: %w", path, err)
	}
	return f.Servers, nil
}
