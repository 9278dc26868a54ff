package pluginapi

import "context"

// Channel is the contract a channel plugin exposes to the bridge host.
// Start blocks until ctx is cancelled or the transport fails; every inbound
// message is delivered to the handler before the next one is read.
type Channel interface {
	Name() string
	Probe(ctx context.Context) (ProbeResult, error)
	Start(ctx context.Context, handler Handler) error
	Send(ctx context.Context, out Outbound) error
}

// Handler receives inbound messages. Returning an error does not stop the
// channel; plugins log and continue.
type Handler func(ctx context.Context, msg Message) error

type ProbeResult struct {
	Name         string   `json:"name"`
	Available    bool     `json:"available"`
	Capabilities []string `json:"capabilities"`
	Message      string   `json:"message,omitempty"`
}

type Message struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	ChannelID string `json:"channelId"`
	ThreadID  string `json:"threadId,omitempty"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
	Mention   bool   `json:"mention,omitempty"`
}

type Outbound struct {
	ChannelID string `json:"channelId"`
	ThreadID  string `json:"threadId,omitempty"`
	Text      string `json:"text"`
}
