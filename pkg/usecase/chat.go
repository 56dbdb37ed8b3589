package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/markdown"
)

//go:embed prompt/chat_system.md
var defaultChatPrompt string

//go:embed prompt/chat_transcript.md
var chatTranscriptTmpl string

var chatTranscript = template.Must(template.New("chat_transcript").Parse(chatTranscriptTmpl))

// fallbackReply is returned when the model produced no text
const fallbackReply = "Sorry, I couldn't generate a response."

// ChatUseCase answers topic chat questions with an LLM
type ChatUseCase struct {
	llmClient    gollem.LLMClient
	systemPrompt string
}

// NewChatUseCase creates a chat use case. An empty prompt selects the built-in
// Berlin Marathon prompt. llmClient may be nil, in which case Ask fails with
// ErrLLMNotConfigured.
func NewChatUseCase(llmClient gollem.LLMClient, systemPrompt string) *ChatUseCase {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultChatPrompt
	}
	return &ChatUseCase{
		llmClient:    llmClient,
		systemPrompt: systemPrompt,
	}
}

// Ask generates the next assistant message for the transcript
func (uc *ChatUseCase) Ask(ctx context.Context, turns []model.ChatTurn) (*model.ChatReply, error) {
	if len(turns) == 0 {
		return nil, goerr.Wrap(ErrEmptyChat, "messages array is required")
	}
	for i, turn := range turns {
		if !turn.Role.IsValid() {
			return nil, goerr.Wrap(ErrInvalidInput, "invalid chat role",
				goerr.V("index", i), goerr.V("role", turn.Role))
		}
	}
	if uc.llmClient == nil {
		return nil, goerr.Wrap(ErrLLMNotConfigured, "chat is unavailable")
	}

	var prompt bytes.Buffer
	if err := chatTranscript.Execute(&prompt, struct{ Turns []model.ChatTurn }{Turns: turns}); err != nil {
		return nil, goerr.Wrap(err, "failed to render chat transcript")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(uc.systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate chat reply")
	}

	reply := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if reply == "" {
		logging.From(ctx).Warn("LLM returned an empty chat reply", "turns", len(turns))
		reply = fallbackReply
	}

	return &model.ChatReply{
		Reply: reply,
		HTML:  markdown.ToHTML(reply),
	}, nil
}
