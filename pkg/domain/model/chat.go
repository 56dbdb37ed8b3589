package model

import "github.com/secmon-lab/tablero/pkg/domain/types"

// ChatTurn is one message of a topic chat transcript
type ChatTurn struct {
	Role    types.ChatRole `json:"role"`
	Content string         `json:"content"`
}

// ChatReply is the generated answer
type ChatReply struct {
	Reply string `json:"reply"`
	HTML  string `json:"html"`
}
