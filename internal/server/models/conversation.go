package models

import "time"

// Conversation is a two-party thread. Participants are stored as an ordered
// pair so the pair is unique regardless of who started it.
type Conversation struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	Messages     []Message `json:"messages"`
	// MessageCount is filled by queries that do not load Messages.
	MessageCount int `json:"messageCount"`

	TimerStarted *int64 `json:"timerStarted,omitempty"`
	TimerExpired bool   `json:"timerExpired"`

	Rated        bool   `json:"rated"`
	RatingType   string `json:"ratingType,omitempty"`
	RatingReason string `json:"ratingReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasMessages reports whether at least one message was sent.
func (c *Conversation) HasMessages() bool {
	return c.MessageCount > 0 || len(c.Messages) > 0
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// OrderedPair returns a and b sorted, the storage order of Participants.
func OrderedPair(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Text           string `json:"text"`
	// Timestamp is epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Rating types.
const (
	RatingGood = "good"
	RatingBad  = "bad"
)

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Messages            []Message `json:"messages"`
	TimerStarted        *int64    `json:"timerStarted,omitempty"`
	TimerExpired        bool      `json:"timerExpired"`
	Rated               bool      `json:"rated"`
	LastMessage         string    `json:"lastMessage"`
	LastMessageTime     int64     `json:"lastMessageTime"`
	LastMessageSenderID string    `json:"lastMessageSenderId,omitempty"`
	WaitingForResponse  bool      `json:"waitingForResponse"`
	TheyRespondedLast   bool      `json:"theyRespondedLast"`
}
