package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// env holds what every command needs: config, logger and the open slot
// backend.
type env struct {
	cfg       *model.AppConfig
	logger    *zap.Logger
	slots     store.Slots
	persister *store.Persister

	// lookupKey finds the Claude API key; overridden in tests.
	lookupKey func() string
}

func openEnv(cfgPath string) (*env, error) {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	slots, err := store.Open(cfg.Storage)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	logger.Debug("storage opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("key", cfg.Storage.Key),
	)

	return &env{
		cfg:       cfg,
		logger:    logger,
		slots:     slots,
		persister: store.NewPersister(slots, cfg.Storage.Key, store.WithLogger(logger)),
		lookupKey: ai.LookupAPIKey,
	}, nil
}

func (e *env) Close() error {
	err := e.slots.Close()
	_ = e.logger.Sync()
	return err
}

// requester builds the summary requester. configured is false when no API
// key could be found; the requester then fails every non-empty request.
func (e *env) requester() (*ai.Requester, bool) {
	key := e.lookupKey()
	if key == "" {
		return ai.NewRequester(nil, e.logger), false
	}
	s := ai.NewClaudeSummarizer(ai.ClaudeConfig{
		APIKey:    key,
		Model:     e.cfg.AI.Model,
		MaxTokens: e.cfg.AI.MaxTokens,
		BaseURL:   e.cfg.AI.BaseURL,
	})
	return ai.NewRequester(s, e.logger), true
}

// syncSaver writes every snapshot immediately and remembers the first
// failure, so one-shot commands can report it.
type syncSaver struct {
	persister *store.Persister
	err       error
}

func (s *syncSaver) Save(ctx context.Context, tasks []model.Task) {
	if err := s.persister.Write(ctx, tasks); err != nil && s.err == nil {
		s.err = err
	}
}

// loadBoard hydrates a board for a one-shot command. An unreachable backend
// is an error here, unlike in the interactive board. The demo seed is written
// on first use so the ids it prints stay valid for later commands.
func (e *env) loadBoard(ctx context.Context) (*board.Board, *syncSaver, error) {
	_, ok, err := e.persister.Read(ctx)
	var pErr *store.PersistenceError
	if errors.As(err, &pErr) && pErr.Op == "read" {
		return nil, nil, err
	}

	tasks := e.persister.Load(ctx)
	if err == nil && !ok {
		if err := e.persister.Write(ctx, tasks); err != nil {
			return nil, nil, err
		}
	}

	saver := &syncSaver{persister: e.persister}
	b := board.New(saver, board.WithLogger(e.logger))
	b.Hydrate(tasks)
	return b, saver, nil
}
