package babel

import "time"

// Turn is one message in the conversation. A user turn holds the text the
// user submitted; an assistant turn holds the formatted multi-language
// translation of the user turn right before it.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Exchange pairs a user turn with the assistant turn that answered it.
// Reply is nil while the translation is in flight or after it failed.
type Exchange struct {
	User  Turn
	Reply *Turn
}

// Pending reports whether the exchange is still waiting for its translation.
func (e Exchange) Pending() bool { return e.Reply == nil }

// Conversation is the ordered, append-only log of turns for one session.
// The zero value is an empty conversation ready to use.
type Conversation struct {
	turns []Turn
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

// Clear removes every turn.
func (c *Conversation) Clear() {
	c.turns = nil
}

// All returns the turns in chronological order. The returned slice is a
// copy; appending to it does not affect the conversation.
func (c *Conversation) All() []Turn {
	if len(c.turns) == 0 {
		return nil
	}
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// Exchanges groups the turns into user/reply pairs for display.
func (c *Conversation) Exchanges() []Exchange {
	var out []Exchange
	for i := 0; i < len(c.turns); i++ {
		t := c.turns[i]
		if t.Role != RoleUser {
			continue
		}
		ex := Exchange{User: t}
		if i+1 < len(c.turns) && c.turns[i+1].Role == RoleAssistant {
			reply := c.turns[i+1]
			ex.Reply = &reply
			i++
		}
		out = append(out, ex)
	}
	return out
}

// retractUnanswered drops a trailing user turn that never received a reply.
// It reports whether a turn was dropped.
func (c *Conversation) retractUnanswered() bool {
	n := len(c.turns)
	if n == 0 || c.turns[n-1].Role != RoleUser {
		return false
	}
	c.turns = c.turns[:n-1]
	return true
}
