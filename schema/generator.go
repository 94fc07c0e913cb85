// Package schema generates JSON schemas for the types crossing the
// contract boundary, so embedders and tooling can validate payloads
// without importing the Go types.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/kromsten/cosmwasm/domain/entities"
)

// Generate creates a JSON schema from a Go type. Uses the
// `invopop/jsonschema` reflector (Draft 2020-12) with inline expansion.
func Generate(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(v)

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return out, nil
}

// boundaryTypes are the documents the host exchanges with contracts.
var boundaryTypes = map[string]any{
	"env":                     entities.Env{},
	"message_info":            entities.MessageInfo{},
	"response":                entities.Response{},
	"reply":                   entities.Reply{},
	"cosmos_msg":              entities.CosmosMsg{},
	"query_request":           entities.QueryRequest{},
	"ibc_channel_open_msg":    entities.IBCChannelOpenMsg{},
	"ibc_channel_connect_msg": entities.IBCChannelConnectMsg{},
	"ibc_channel_close_msg":   entities.IBCChannelCloseMsg{},
	"ibc_packet_receive_msg":  entities.IBCPacketReceiveMsg{},
	"ibc_packet_ack_msg":      entities.IBCPacketAckMsg{},
	"ibc_packet_timeout_msg":  entities.IBCPacketTimeoutMsg{},
}

// Names lists the available boundary schemas in sorted order.
func Names() []string {
	names := make([]string, 0, len(boundaryTypes))
	for name := range boundaryTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Boundary generates the schema of one named boundary type.
func Boundary(name string) ([]byte, error) {
	v, ok := boundaryTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown boundary type %q", name)
	}
	return Generate(v)
}

// All generates every boundary schema, keyed by name.
func All() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(boundaryTypes))
	for name, v := range boundaryTypes {
		s, err := Generate(v)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}
