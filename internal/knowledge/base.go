// Package knowledge holds the reference library the user can browse and
// attach to a chat as context: worked examples, methodology texts and the
// user's own notes. Documents are indexed in memory with bleve for search.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"maia/internal/logging"
	"maia/internal/metrics"
	"maia/internal/types"
)

const (
	defaultDocName    = "Nuevo Documento"
	defaultDocContent = "# Nuevo Documento\n\nEscribe aquí tu contenido..."
	defaultLimit      = 10
)

// Document is one file of the library.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FolderID  string    `json:"folderId"`
	Content   string    `json:"content"`
	Protected bool      `json:"protected"`
	Path      string    `json:"path,omitempty"` // Backing file, for documents in the user directory
	UpdatedAt time.Time `json:"updatedAt"`
}

// Folder is a top-level group of documents.
type Folder struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Protected bool       `json:"protected"`
	Documents []Document `json:"documents"`
}

// Hit is a search result.
type Hit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	FolderID string  `json:"folderId"`
	Score    float64 `json:"score"`
}

// indexedDoc is what bleve sees.
type indexedDoc struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Folder  string `json:"folder"`
}

type folderState struct {
	id        string
	name      string
	protected bool
	order     []string
}

// Base is the document library. It is safe for concurrent use.
type Base struct {
	mu      sync.RWMutex
	folders []*folderState
	docs    map[string]*Document
	index   bleve.Index
	userDir string
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures a Base.
type Option func(*Base)

// WithUserDir makes "Mis archivos" write through to markdown files in dir.
func WithUserDir(dir string) Option {
	return func(b *Base) { b.userDir = dir }
}

// WithMetrics reports document counts and searches.
func WithMetrics(m *metrics.Registry) Option {
	return func(b *Base) { b.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Base) { b.now = now }
}

// New builds the library with its built-in documents.
func New(opts ...Option) (*Base, error) {
	b := &Base{
		docs: make(map[string]*Document),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	b.index = index

	for _, bf := range builtinTree {
		f := &folderState{id: bf.id, name: bf.name, protected: bf.protected}
		b.folders = append(b.folders, f)
		for _, bd := range bf.docs {
			content, err := readBuiltin(bd.file)
			if err != nil {
				_ = index.Close()
				return nil, err
			}
			doc := &Document{
				ID:        bd.id,
				Name:      bd.name,
				FolderID:  bf.id,
				Content:   content,
				Protected: bf.protected,
				UpdatedAt: b.now(),
			}
			if err := b.put(f, doc, false); err != nil {
				_ = index.Close()
				return nil, err
			}
		}
	}

	b.reportCount()
	logging.KnowledgeDebug("Knowledge base ready: %d documents", len(b.docs))
	return b, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = es.AnalyzerName

	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("content", text)
	doc.AddFieldMappingsAt("folder", keyword)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = es.AnalyzerName
	return m
}

// Close releases the search index.
func (b *Base) Close() error {
	return b.index.Close()
}

// List returns every folder with its documents in display order.
func (b *Base) List() []Folder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Folder, 0, len(b.folders))
	for _, f := range b.folders {
		folder := Folder{ID: f.id, Name: f.name, Protected: f.protected, Documents: []Document{}}
		for _, id := range f.order {
			folder.Documents = append(folder.Documents, *b.docs[id])
		}
		out = append(out, folder)
	}
	return out
}

// Len returns the number of documents.
func (b *Base) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docs)
}

// Get returns a document by ID.
func (b *Base) Get(id string) (Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *doc, nil
}

// ContextFile returns a document in the shape a chat session attaches.
func (b *Base) ContextFile(id string) (*types.ContextFile, error) {
	doc, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	return &types.ContextFile{Title: doc.Name, Content: doc.Content}, nil
}

// Create adds a document at the top of "Mis archivos". Empty name and
// content get placeholder values.
func (b *Base) Create(name, content string) (Document, error) {
	if strings.TrimSpace(name) == "" {
		name = defaultDocName
	}
	if content == "" {
		content = defaultDocContent
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := uuid.NewString()[:8]
	doc := &Document{
		ID:        idForFile(key + ".md"),
		Name:      name,
		FolderID:  FolderUser,
		Content:   content,
		UpdatedAt: b.now(),
	}
	if b.userDir != "" {
		doc.Path = filepath.Join(b.userDir, key+".md")
		if err := writeFile(doc.Path, content); err != nil {
			return Document{}, err
		}
	}
	if err := b.put(b.folder(FolderUser), doc, true); err != nil {
		return Document{}, err
	}

	b.reportCount()
	logging.Knowledge("Document created: %s (%s)", doc.ID, doc.Name)
	return *doc, nil
}

// Update renames and rewrites a document.
func (b *Base) Update(id, name, content string) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if doc.Protected {
		return Document{}, fmt.Errorf("%w: %s", ErrProtected, doc.Name)
	}

	if doc.Path != "" {
		if err := writeFile(doc.Path, content); err != nil {
			return Document{}, err
		}
	}
	if strings.TrimSpace(name) != "" {
		doc.Name = name
	}
	doc.Content = content
	doc.UpdatedAt = b.now()

	if err := b.index.Index(doc.ID, toIndexed(doc)); err != nil {
		return Document{}, fmt.Errorf("index %s: %w", doc.ID, err)
	}
	logging.KnowledgeDebug("Document updated: %s", doc.ID)
	return *doc, nil
}

// Delete removes a document.
func (b *Base) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if doc.Protected {
		return fmt.Errorf("%w: %s", ErrProtected, doc.Name)
	}
	if doc.Path != "" {
		if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", doc.Path, err)
		}
	}

	if err := b.remove(id); err != nil {
		return err
	}
	b.reportCount()
	logging.Knowledge("Document deleted: %s", id)
	return nil
}

// Search runs a full-text query over names and contents. limit <= 0 uses
// the default.
func (b *Base) Search(query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit

	res, err := b.index.Search(req)
	if err != nil {
		b.metrics.RecordKnowledgeSearch("error")
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	b.metrics.RecordKnowledgeSearch("ok")

	b.mu.RLock()
	defer b.mu.RUnlock()

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc, ok := b.docs[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: doc.ID, Name: doc.Name, FolderID: doc.FolderID, Score: h.Score})
	}
	logging.KnowledgeDebug("Search %q: %d hits (total %d)", query, len(hits), res.Total)
	return hits, nil
}

// put stores and indexes doc in folder f. Callers hold mu (or own b
// exclusively during construction).
func (b *Base) put(f *folderState, doc *Document, front bool) error {
	if err := b.index.Index(doc.ID, toIndexed(doc)); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID, err)
	}
	if _, exists := b.docs[doc.ID]; !exists {
		if front {
			f.order = append([]string{doc.ID}, f.order...)
		} else {
			f.order = append(f.order, doc.ID)
		}
	}
	b.docs[doc.ID] = doc
	return nil
}

func (b *Base) remove(id string) error {
	doc := b.docs[id]
	if err := b.index.Delete(id); err != nil {
		return fmt.Errorf("unindex %s: %w", id, err)
	}
	f := b.folder(doc.FolderID)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	delete(b.docs, id)
	return nil
}

func (b *Base) folder(id string) *folderState {
	for _, f := range b.folders {
		if f.id == id {
			return f
		}
	}
	return nil
}

func (b *Base) reportCount() {
	b.metrics.SetKnowledgeDocuments(len(b.docs))
}

func toIndexed(d *Document) indexedDoc {
	return indexedDoc{Name: d.Name, Content: d.Content, Folder: d.FolderID}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
