package ai

import "context"

// ChatSession keeps a running conversation with the model. Each exchange is
// appended to the history so later prompts see the earlier turns. A session
// is not safe for concurrent use; the application drives it from a single
// goroutine.
type ChatSession struct {
	client       *Client
	instructions string
	history      []Content
}

// NewChatSession starts a conversation. When instructions is non-empty it is
// prepended to the first prompt, so the whole session answers under the same
// ground rules.
func NewChatSession(client *Client, instructions string) *ChatSession {
	return &ChatSession{client: client, instructions: instructions}
}

// SendMessage sends prompt as the next user turn and returns the model's
// reply. The exchange joins the history only when the call succeeds, so a
// failed turn can be retried without duplicating it.
func (s *ChatSession) SendMessage(ctx context.Context, prompt string) (string, error) {
	text := prompt
	if len(s.history) == 0 && s.instructions != "" {
		text = s.instructions + "\n\n" + prompt
	}

	turns := append(append([]Content{}, s.history...), Content{
		Role:  "user",
		Parts: []Part{{Text: text}},
	})

	reply, err := s.client.GenerateContent(ctx, turns)
	if err != nil {
		return "", err
	}

	s.history = append(turns, Content{
		Role:  "model",
		Parts: []Part{{Text: reply}},
	})
	return reply, nil
}

// Len reports the number of turns in the session history.
func (s *ChatSession) Len() int {
	return len(s.history)
}
