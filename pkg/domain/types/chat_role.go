package types

// ChatRole is the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid checks if the chat role is valid
func (r ChatRole) IsValid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}
