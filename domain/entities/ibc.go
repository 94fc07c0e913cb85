package entities

// IBCOrder is the channel ordering guarantee.
type IBCOrder string

const (
	IBCOrderUnordered IBCOrder = "ORDER_UNORDERED"
	IBCOrderOrdered   IBCOrder = "ORDER_ORDERED"
)

// IBCEndpoint identifies one end of a channel.
type IBCEndpoint struct {
	PortID    string `json:"port_id"`
	ChannelID string `json:"channel_id"`
}

// IBCChannel describes an established or negotiating channel.
type IBCChannel struct {
	Endpoint             IBCEndpoint `json:"endpoint"`
	CounterpartyEndpoint IBCEndpoint `json:"counterparty_endpoint"`
	Order                IBCOrder    `json:"order"`
	Version              string      `json:"version"`
	ConnectionID         string      `json:"connection_id"`
}

// IBCTimeout is the timeout condition of a packet. Block, timestamp or both
// may be set; the packet times out when either is reached.
type IBCTimeout struct {
	Block *IBCTimeoutBlock `json:"block,omitempty"`
	// Timestamp is nanoseconds since the unix epoch, as a string.
	Timestamp string `json:"timestamp,omitempty"`
}

// IBCTimeoutBlock is a timeout expressed as a height on the remote chain.
type IBCTimeoutBlock struct {
	Revision uint64 `json:"revision"`
	Height   uint64 `json:"height"`
}

// IBCPacket is a packet as delivered to the receive/ack/timeout entrypoints.
type IBCPacket struct {
	Data     Binary      `json:"data"`
	Src      IBCEndpoint `json:"src"`
	Dest     IBCEndpoint `json:"dest"`
	Sequence uint64      `json:"sequence"`
	Timeout  IBCTimeout  `json:"timeout"`
}

// IBCAcknowledgement is the raw acknowledgement bytes from the remote chain.
type IBCAcknowledgement struct {
	Data Binary `json:"data"`
}

// IBCChannelOpenMsg is the payload of the channel-open entrypoint: either the
// init step on this chain or the try step answering a remote init.
type IBCChannelOpenMsg struct {
	OpenInit *IBCOpenInit `json:"open_init,omitempty"`
	OpenTry  *IBCOpenTry  `json:"open_try,omitempty"`
}

type IBCOpenInit struct {
	Channel IBCChannel `json:"channel"`
}

type IBCOpenTry struct {
	Channel             IBCChannel `json:"channel"`
	CounterpartyVersion string     `json:"counterparty_version"`
}

// IBC3ChannelOpenResponse lets the contract override the channel version
// during the handshake. A null response accepts the proposed version.
type IBC3ChannelOpenResponse struct {
	Version string `json:"version"`
}

// IBCChannelConnectMsg is the payload of the channel-connect entrypoint.
type IBCChannelConnectMsg struct {
	OpenAck     *IBCOpenAck     `json:"open_ack,omitempty"`
	OpenConfirm *IBCOpenConfirm `json:"open_confirm,omitempty"`
}

type IBCOpenAck struct {
	Channel             IBCChannel `json:"channel"`
	CounterpartyVersion string     `json:"counterparty_version"`
}

type IBCOpenConfirm struct {
	Channel IBCChannel `json:"channel"`
}

// IBCChannelCloseMsg is the payload of the channel-close entrypoint.
type IBCChannelCloseMsg struct {
	CloseInit    *IBCCloseInit    `json:"close_init,omitempty"`
	CloseConfirm *IBCCloseConfirm `json:"close_confirm,omitempty"`
}

type IBCCloseInit struct {
	Channel IBCChannel `json:"channel"`
}

type IBCCloseConfirm struct {
	Channel IBCChannel `json:"channel"`
}

// IBCPacketReceiveMsg is the payload of the packet-receive entrypoint.
// Relayer is the address that submitted the packet, present since IBC v3.
type IBCPacketReceiveMsg struct {
	Packet  IBCPacket `json:"packet"`
	Relayer Addr      `json:"relayer"`
}

// IBCPacketAckMsg is the payload of the packet-ack entrypoint.
type IBCPacketAckMsg struct {
	Acknowledgement IBCAcknowledgement `json:"acknowledgement"`
	OriginalPacket  IBCPacket          `json:"original_packet"`
	Relayer         Addr               `json:"relayer"`
}

// IBCPacketTimeoutMsg is the payload of the packet-timeout entrypoint.
type IBCPacketTimeoutMsg struct {
	Packet  IBCPacket `json:"packet"`
	Relayer Addr      `json:"relayer"`
}

// IBCBasicResponse is returned by channel and ack/timeout entrypoints.
type IBCBasicResponse struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
	Events     []Event     `json:"events"`
}

// SubMessages returns the outbound messages for feature screening.
func (r IBCBasicResponse) SubMessages() []SubMsg { return r.Messages }

// IBCReceiveResponse is returned by the packet-receive entrypoint and
// carries the acknowledgement written for the packet.
type IBCReceiveResponse struct {
	Acknowledgement Binary      `json:"acknowledgement"`
	Messages        []SubMsg    `json:"messages"`
	Attributes      []Attribute `json:"attributes"`
	Events          []Event     `json:"events"`
}

// SubMessages returns the outbound messages for feature screening.
func (r IBCReceiveResponse) SubMessages() []SubMsg { return r.Messages }
