package channel

import (
	"context"
	"time"
)

// InboundMessage is a message received from a platform.
type InboundMessage struct {
	ChannelName string // platform name, e.g. "telegram"
	SenderID    string
	SenderName  string
	ChatID      string // where replies go
	ChannelID   string // platform channel the message arrived on
	CommunityID string // empty for direct messages
	Text        string
	Image       []byte // raw image payload, nil for plain text
	Mentioned   bool   // the bot was explicitly addressed
	Direct      bool   // private one-on-one chat
	Timestamp   time.Time
}

// OutboundMessage is a message to send through a platform.
type OutboundMessage struct {
	ChatID  string
	Text    string
	ReplyTo string // optional message ID to reply to
}

// MemberEvent reports a user joining or leaving a community.
type MemberEvent struct {
	CommunityID string
	ChatID      string
	UserName    string
	Joined      bool
}

// Channel is the interface for messaging platform integrations.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg OutboundMessage) error
	OnMessage(handler func(InboundMessage))
	IsRunning() bool
}
