package knowledge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"maia/internal/logging"
)

const (
	debounceDelay = 250 * time.Millisecond
	debounceTick  = 100 * time.Millisecond
)

// idForFile maps a markdown file name to its document ID. Documents created
// through Create use the same scheme, so write-through files are recognized
// when they come back through the watcher.
func idForFile(name string) string {
	return "file_" + strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// SyncDir loads every *.md file of dir into "Mis archivos". Documents whose
// file no longer exists are dropped. A missing dir is not an error.
func (b *Base) SyncDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := b.syncFile(path); err != nil {
			logging.KnowledgeWarn("Skipping %s: %v", path, err)
			continue
		}
		seen[idForFile(path)] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, doc := range b.docs {
		if doc.Path != "" && filepath.Dir(doc.Path) == filepath.Clean(dir) && !seen[id] {
			if err := b.remove(id); err != nil {
				return err
			}
		}
	}
	b.reportCount()
	return nil
}

// syncFile upserts the document backed by path.
func (b *Base) syncFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)
	id := idForFile(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, exists := b.docs[id]
	if exists && doc.Content == content && doc.Path == path {
		return nil
	}
	if !exists {
		doc = &Document{ID: id, FolderID: FolderUser, Path: path}
	}
	if doc.Protected {
		return ErrProtected
	}
	doc.Path = path
	doc.Content = content
	doc.UpdatedAt = b.now()
	if title := firstHeading(content); title != "" {
		doc.Name = title
	} else if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := b.put(b.folder(FolderUser), doc, true); err != nil {
		return err
	}
	b.reportCount()
	logging.KnowledgeDebug("Synced %s -> %s", path, id)
	return nil
}

// dropFile removes the document backed by path, if any.
func (b *Base) dropFile(path string) {
	id := idForFile(path)

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.docs[id]
	if !ok || doc.Path != path {
		return
	}
	if err := b.remove(id); err != nil {
		logging.KnowledgeWarn("Failed to drop %s: %v", path, err)
		return
	}
	b.reportCount()
	logging.KnowledgeDebug("Dropped %s", id)
}

// WatchDir syncs dir once and then keeps "Mis archivos" in step with it
// until ctx is done. Bursts of writes to the same file are debounced.
func (b *Base) WatchDir(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := b.SyncDir(dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logging.Knowledge("Watching %s", dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.KnowledgeDebug("Watcher for %s stopped", dir)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isMarkdown(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, event.Name)
				b.dropFile(event.Name)
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.KnowledgeError("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) < debounceDelay {
					continue
				}
				delete(pending, path)
				if err := b.syncFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
					logging.KnowledgeWarn("Sync of %s failed: %v", path, err)
				}
			}
		}
	}
}

func firstHeading(content string) string {
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
		return ""
	}
	return ""
}
