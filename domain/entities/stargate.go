package entities

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// NewStargateMsg marshals a protobuf message into a stargate CosmosMsg.
// typeURL must be the full type URL the chain routes by, e.g.
// "/cosmos.authz.v1beta1.MsgGrant".
func NewStargateMsg(typeURL string, msg proto.Message) (CosmosMsg, error) {
	if typeURL == "" {
		return CosmosMsg{}, fmt.Errorf("stargate msg: empty type URL")
	}
	value, err := proto.Marshal(msg)
	if err != nil {
		return CosmosMsg{}, fmt.Errorf("stargate msg: marshal %s: %w", typeURL, err)
	}
	return CosmosMsg{Stargate: &StargateMsg{TypeURL: typeURL, Value: value}}, nil
}

// NewStargateQuery marshals a protobuf request into a stargate QueryRequest
// routed by gRPC query path.
func NewStargateQuery(path string, req proto.Message) (QueryRequest, error) {
	if path == "" {
		return QueryRequest{}, fmt.Errorf("stargate query: empty path")
	}
	data, err := proto.Marshal(req)
	if err != nil {
		return QueryRequest{}, fmt.Errorf("stargate query: marshal %s: %w", path, err)
	}
	return QueryRequest{Stargate: &StargateQuery{Path: path, Data: data}}, nil
}
