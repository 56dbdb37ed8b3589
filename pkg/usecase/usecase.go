package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/model/config"
)

type UseCases struct {
	repo      interfaces.Repository
	appConfig *config.App
	storage   interfaces.BlobStorage
	llmClient gollem.LLMClient
	notifier  interfaces.Notifier
	now       func() time.Time

	Kanban    *KanbanUseCase
	Calendar  *CalendarUseCase
	Material  *MaterialUseCase
	Analytics *AnalyticsUseCase
	Chat      *ChatUseCase
	Auth      AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAppConfig(cfg *config.App) Option {
	return func(uc *UseCases) {
		uc.appConfig = cfg
	}
}

func WithStorage(storage interfaces.BlobStorage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

func WithLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = client
	}
}

// WithNotifier sets where transient notices (failed loads, rolled back
// writes) are delivered
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		appConfig: config.Default(),
		notifier:  nopNotifier{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Kanban = NewKanbanUseCase(repo, uc.appConfig.Board, uc.notifier, uc.now)
	uc.Calendar = NewCalendarUseCase(repo, uc.appConfig.Calendar, uc.notifier, uc.now)
	uc.Material = NewMaterialUseCase(repo, uc.storage, uc.appConfig, uc.now)
	uc.Analytics = NewAnalyticsUseCase(repo, uc.now)
	uc.Chat = NewChatUseCase(uc.llmClient, uc.appConfig.ChatPrompt)

	return uc
}

// AppConfig returns the hub configuration in use
func (uc *UseCases) AppConfig() *config.App {
	return uc.appConfig
}

// LoadAll fills the board and calendar caches
func (uc *UseCases) LoadAll(ctx context.Context) error {
	if err := uc.Kanban.Load(ctx); err != nil {
		return err
	}
	return uc.Calendar.Load(ctx)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.Notice) {}
