package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"maia/internal/knowledge"
	"maia/internal/metrics"
	"maia/internal/store"
	"maia/internal/types"
	"maia/internal/usage"
)

// app bundles the long-lived components shared by the commands.
type app struct {
	archive *store.Archive
	domain  *store.Memory
	kb      *knowledge.Base
	metrics *metrics.Registry
	usage   *usage.Tracker

	// savedVersion is the domain version last written to the archive.
	savedVersion uint64
}

// newKnowledgeBase builds the knowledge base; tests replace it.
var newKnowledgeBase = knowledge.New

// openApp opens the archive, restores the saved workspace and loads the
// knowledge base.
func openApp(ctx context.Context) (*app, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &app{
		domain:  store.NewMemory(),
		metrics: metrics.DefaultRegistry(),
	}

	var err error
	a.archive, err = store.OpenArchive(cfg.ArchivePath())
	if err != nil {
		return nil, err
	}

	snap, err := a.archive.LoadWorkspace(ctx)
	switch {
	case err == nil:
		a.domain.Restore(snap)
	case errors.Is(err, store.ErrWorkspaceEmpty):
	default:
		a.archive.Close()
		return nil, err
	}
	a.metrics.UpdateWorkspace(a.domain.Summary())
	a.savedVersion = a.domain.Version()

	a.usage, err = usage.NewTracker(cfg.Storage.DataDir)
	if err != nil {
		a.archive.Close()
		return nil, err
	}

	a.kb, err = newKnowledgeBase(
		knowledge.WithUserDir(cfg.KnowledgeDir()),
		knowledge.WithMetrics(a.metrics),
	)
	if err != nil {
		a.usage.Close()
		a.archive.Close()
		return nil, err
	}
	if err := a.kb.SyncDir(cfg.KnowledgeDir()); err != nil {
		logger.Warn("Failed to load user documents", zap.Error(err))
	}

	logger.Debug("App opened",
		zap.String("archive", cfg.ArchivePath()),
		zap.Int("assets", len(snap.Assets)),
		zap.Int("documents", a.kb.Len()))
	return a, nil
}

// saveChat archives a conversation and the workspace.
func (a *app) saveChat(ctx context.Context, s types.ChatSession) error {
	if err := a.archive.SaveSession(ctx, s); err != nil {
		return err
	}
	return a.saveWorkspace(ctx)
}

// saveWorkspace writes the workspace to the archive.
func (a *app) saveWorkspace(ctx context.Context) error {
	version := a.domain.Version()
	if err := a.archive.SaveWorkspace(ctx, a.domain.Snapshot()); err != nil {
		return err
	}
	a.savedVersion = version
	return nil
}

// workspaceDirty reports whether the workspace changed since it was last
// loaded or saved.
func (a *app) workspaceDirty() bool {
	return a.domain.Version() != a.savedVersion
}

func (a *app) Close() error {
	var errs []error
	if a.kb != nil {
		errs = append(errs, a.kb.Close())
	}
	errs = append(errs, a.usage.Close())
	if a.archive != nil {
		errs = append(errs, a.archive.Close())
	}
	return errors.Join(errs...)
}
