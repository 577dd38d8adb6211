package session

import (
	"time"

	"github.com/example/chat-relay/domain/chat"
)

// ClockRenderer stamps messages with the time returned by Now.
type ClockRenderer struct {
	Now func() time.Time
}

// NewRenderer returns a renderer using the wall clock.
func NewRenderer() *ClockRenderer {
	return &ClockRenderer{Now: time.Now}
}

// RenderMessage builds a chat message.
func (r *ClockRenderer) RenderMessage(sender, text string) chat.RenderedMessage {
	return chat.RenderedMessage{Sender: sender, Text: text, SentAt: r.Now()}
}

// RenderLocationMessage builds a location message.
func (r *ClockRenderer) RenderLocationMessage(sender, url string) chat.LocationMessage {
	return chat.LocationMessage{Sender: sender, URL: url, SentAt: r.Now()}
}
