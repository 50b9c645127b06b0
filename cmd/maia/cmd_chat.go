package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maia/cmd/maia/chat"
	"maia/internal/llm"
	"maia/internal/session"
	"maia/internal/store"
	"maia/internal/types"
)

var (
	chatMode    string
	chatContext string
	chatResume  string
	chatDemo    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	RunE:  runChat,
}

func init() {
	addChatFlags(chatCmd)
}

// addChatFlags registers the chat flags on cmd. The root command runs the
// chat too, so it carries the same flags.
func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&chatMode, "mode", "m", "", "Initial mode: register, modeling, mitigation or general")
	cmd.Flags().StringVar(&chatContext, "context", "", "Knowledge base document ID to load as context")
	cmd.Flags().StringVar(&chatResume, "resume", "", "Archived session ID to resume")
	cmd.Flags().BoolVar(&chatDemo, "demo", false, "Load the demo workspace and conversation")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := cfg.GetDefaultMode()
	if chatMode != "" {
		m, ok := types.ParseAgentMode(chatMode)
		if !ok {
			return fmt.Errorf("%w: %q", session.ErrInvalidMode, chatMode)
		}
		mode = m
	}

	var contextFile *types.ContextFile
	if chatContext != "" {
		if contextFile, err = a.kb.ContextFile(chatContext); err != nil {
			return err
		}
	}

	var resume *types.ChatSession
	switch {
	case chatResume != "":
		s, err := a.archive.GetSession(ctx, chatResume)
		if err != nil {
			return err
		}
		resume = &s
	case chatDemo:
		now := time.Now()
		a.domain.Restore(store.DemoSnapshot(now))
		s := store.DemoSession(now)
		resume = &s
		logger.Info("Demo workspace loaded")
	}

	temperature := cfg.LLM.Temperature
	mgr, err := session.NewManager(session.Config{
		Dial: llm.GeminiDialer(llm.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		}),
		Store:         a.domain,
		Metrics:       a.metrics,
		Usage:         a.usage,
		Model:         cfg.LLM.Model,
		Temperature:   &temperature,
		MaxToolRounds: cfg.GetMaxToolRounds(),
		RoundTimeout:  cfg.GetLLMTimeout(),
		Mode:          mode,
		ContextFile:   contextFile,
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	// A failed start leaves the error on screen; the next message retries.
	if resume != nil {
		err = mgr.Resume(ctx, *resume)
	} else {
		err = mgr.Initialize(ctx)
	}
	if err != nil {
		logger.Warn("Session not initialized", zap.Error(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	// Background helpers log their failures; only the chat ends the command.
	if cfg.Knowledge.Watch {
		g.Go(func() error {
			if err := a.kb.WatchDir(gctx, cfg.KnowledgeDir()); err != nil {
				logger.Warn("Knowledge watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			if err := serveMetrics(gctx, cfg.Metrics.Addr, a.metrics.Handler()); err != nil {
				logger.Warn("Metrics server stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return chat.Run(gctx, chat.Options{
			Conversation: mgr,
			Library:      a.kb,
			Save: func(s types.ChatSession) error {
				return a.saveChat(gctx, s)
			},
			Summary: a.domain.Summary,
		})
	})

	runErr := g.Wait()

	saveCtx := context.WithoutCancel(ctx)
	if mgr.HasConversation() {
		s := mgr.Archive("")
		if err := a.saveChat(saveCtx, s); err != nil {
			logger.Error("Failed to archive conversation", zap.Error(err))
		} else {
			logger.Info("Conversation archived", zap.String("id", s.ID), zap.String("title", s.Title))
		}
	} else if a.workspaceDirty() {
		if err := a.saveWorkspace(saveCtx); err != nil {
			logger.Error("Failed to save workspace", zap.Error(err))
		}
	}

	return runErr
}
