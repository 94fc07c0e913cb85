package entities

import (
	"encoding/json"
	"fmt"
)

// Attribute is a key/value pair attached to an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a typed group of attributes emitted by a contract.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// ReplyOn controls when the host calls back into the contract's reply
// entrypoint for a submessage.
type ReplyOn string

const (
	ReplyAlways  ReplyOn = "always"
	ReplyOnError ReplyOn = "error"
	ReplySuccess ReplyOn = "success"
	ReplyNever   ReplyOn = "never"
)

// SubMsg wraps a CosmosMsg with reply routing and an optional gas limit for
// its execution.
type SubMsg struct {
	ID       uint64    `json:"id"`
	Msg      CosmosMsg `json:"msg"`
	GasLimit *uint64   `json:"gas_limit,omitempty"`
	ReplyOn  ReplyOn   `json:"reply_on"`
}

// Response is the success payload of instantiate/execute/migrate/sudo.
type Response struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
	Events     []Event     `json:"events"`
	Data       Binary      `json:"data,omitempty"`
}

// SubMessages returns the outbound messages for feature screening.
func (r Response) SubMessages() []SubMsg { return r.Messages }

// Reply is delivered to the reply entrypoint after a submessage completes.
type Reply struct {
	ID     uint64       `json:"id"`
	Result SubMsgResult `json:"result"`
}

// SubMsgResult is the outcome of a submessage: Ok or Err, never both.
type SubMsgResult struct {
	Ok  *SubMsgResponse `json:"ok,omitempty"`
	Err string          `json:"error,omitempty"`
}

// SubMsgResponse carries the events and data of a successful submessage.
type SubMsgResponse struct {
	Events []Event `json:"events"`
	Data   Binary  `json:"data,omitempty"`
}

// ContractResult is the envelope every entrypoint returns: the contract
// either produced a value or a (redacted) error string.
type ContractResult[T any] struct {
	Ok  *T     `json:"ok,omitempty"`
	Err string `json:"error,omitempty"`
}

// SystemResult wraps the host's answer to a chain query. A system error
// means the query could not be routed at all; a contract-level error is
// inside the Ok branch.
type SystemResult[T any] struct {
	Ok  *T           `json:"ok,omitempty"`
	Err *SystemError `json:"error,omitempty"`
}

// ToSystemResponse serializes either branch of a raw query outcome into the
// SystemResult JSON contracts parse.
func ToSystemResponse(value []byte, sysErr *SystemError) ([]byte, error) {
	if sysErr != nil {
		return json.Marshal(SystemResult[json.RawMessage]{Err: sysErr})
	}
	raw := json.RawMessage(value)
	return json.Marshal(SystemResult[json.RawMessage]{Ok: &raw})
}

// SystemError is the tagged union of routing-level query failures.
type SystemError struct {
	InvalidRequest     *InvalidRequestErr     `json:"invalid_request,omitempty"`
	InvalidResponse    *InvalidResponseErr    `json:"invalid_response,omitempty"`
	NoSuchContract     *NoSuchContractErr     `json:"no_such_contract,omitempty"`
	Unknown            *struct{}              `json:"unknown,omitempty"`
	UnsupportedRequest *UnsupportedRequestErr `json:"unsupported_request,omitempty"`
}

type InvalidRequestErr struct {
	Error   string `json:"error"`
	Request Binary `json:"request"`
}

type InvalidResponseErr struct {
	Error    string `json:"error"`
	Response Binary `json:"response"`
}

type NoSuchContractErr struct {
	Addr string `json:"addr"`
}

type UnsupportedRequestErr struct {
	Kind string `json:"kind"`
}

func (e *SystemError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.InvalidRequest != nil:
		return fmt.Sprintf("system: invalid request: %s", e.InvalidRequest.Error)
	case e.InvalidResponse != nil:
		return fmt.Sprintf("system: invalid response: %s", e.InvalidResponse.Error)
	case e.NoSuchContract != nil:
		return fmt.Sprintf("system: no such contract: %s", e.NoSuchContract.Addr)
	case e.UnsupportedRequest != nil:
		return fmt.Sprintf("system: unsupported request: %s", e.UnsupportedRequest.Kind)
	default:
		return "system: unknown"
	}
}
