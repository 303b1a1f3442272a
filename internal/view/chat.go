package view

// TypingText is shown while the assistant is answering.
const TypingText = "..."

// ErrorReply replaces the typing placeholder when the request fails.
const ErrorReply = "Error"

// Transcript is the chat history. Methods return a new value and never
// modify the receiver's backing array.
type Transcript struct {
	Messages []Message
}

func (t Transcript) with(m Message) Transcript {
	out := make([]Message, len(t.Messages), len(t.Messages)+1)
	copy(out, t.Messages)
	return Transcript{Messages: append(out, m)}
}

// AppendUser adds the user's message.
func (t Transcript) AppendUser(id, text string) Transcript {
	return t.with(Message{ID: id, Sender: SenderUser, Text: text})
}

// AppendPending adds a typing placeholder for the reply to come.
func (t Transcript) AppendPending(id string) Transcript {
	return t.with(Message{ID: id, Sender: SenderBot, Text: TypingText, Pending: true})
}

// Resolve replaces the placeholder id with the bot's text. If the
// placeholder is gone the text is appended instead.
func (t Transcript) Resolve(id, text string) Transcript {
	out := make([]Message, len(t.Messages))
	copy(out, t.Messages)
	for i, m := range out {
		if m.ID == id {
			out[i] = Message{ID: id, Sender: SenderBot, Text: text}
			return Transcript{Messages: out}
		}
	}
	return Transcript{Messages: out}.with(Message{ID: id, Sender: SenderBot, Text: text})
}

// Pending counts unresolved placeholders.
func (t Transcript) Pending() int {
	n := 0
	for _, m := range t.Messages {
		if m.Pending {
			n++
		}
	}
	return n
}

// Panel renders the transcript.
func (t Transcript) Panel() Panel {
	msgs := make([]Message, len(t.Messages))
	copy(msgs, t.Messages)
	return Panel{Kind: KindChat, Messages: msgs}
}
