package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"maia/internal/metrics"
)

func newBase(t *testing.T, opts ...Option) *Base {
	t.Helper()
	b, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func docIDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func TestNew_BuiltinTree(t *testing.T) {
	b := newBase(t)

	folders := b.List()
	require.Len(t, folders, 3)

	assert.Equal(t, "Mis archivos", folders[0].Name)
	assert.Empty(t, folders[0].Documents)

	assert.Equal(t, "Ejemplos Prácticos", folders[1].Name)
	assert.Equal(t, []string{"file_caso_1", "file_caso_2", "file_caso_3"}, docIDs(folders[1].Documents))

	assert.Equal(t, "Fundamentos Teóricos", folders[2].Name)
	assert.True(t, folders[2].Protected)
	assert.Equal(t, []string{"file_jurist", "file_intro", "file_proactivo"}, docIDs(folders[2].Documents))

	assert.Equal(t, 6, b.Len())

	doc, err := b.Get("file_jurist")
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "# Metodología JURIST para OpSec")
}

func TestFundamentalsAreProtected(t *testing.T) {
	b := newBase(t)

	_, err := b.Update("file_intro", "Otro", "x")
	assert.ErrorIs(t, err, ErrProtected)
	assert.ErrorIs(t, b.Delete("file_proactivo"), ErrProtected)

	doc, err := b.Get("file_intro")
	require.NoError(t, err)
	assert.Equal(t, "Introducción al Modelado", doc.Name)

	// Examples are editable.
	updated, err := b.Update("file_caso_3", "Caso 3 revisado", "# Caso 3\n\nNotas.")
	require.NoError(t, err)
	assert.Equal(t, "Caso 3 revisado", updated.Name)
	require.NoError(t, b.Delete("file_caso_3"))

	_, err = b.Get("file_caso_3")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, b.Delete("file_caso_3"), ErrNotFound)
}

func TestCreate_PrependsToUserFolder(t *testing.T) {
	b := newBase(t)

	first, err := b.Create("", "")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo Documento", first.Name)
	assert.Equal(t, "# Nuevo Documento\n\nEscribe aquí tu contenido...", first.Content)
	assert.Equal(t, FolderUser, first.FolderID)

	second, err := b.Create("Inventario", "Servidores del sótano")
	require.NoError(t, err)

	assert.Equal(t, []string{second.ID, first.ID}, docIDs(b.List()[0].Documents))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSearch(t *testing.T) {
	b := newBase(t)

	hits, err := b.Search("Ecuador", 10)
	require.NoError(t, err)

	var ids []string
	for _, h := range hits {
		ids = append(ids, h.ID)
		assert.Greater(t, h.Score, 0.0)
	}
	assert.ElementsMatch(t, []string{"file_caso_1", "file_caso_2"}, ids)

	doc, err := b.Create("Bitácora", "Registro de incidentes con el proveedor Zentralbank")
	require.NoError(t, err)
	hits, err = b.Search("zentralbank", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, doc.ID, hits[0].ID)

	require.NoError(t, b.Delete(doc.ID))
	hits, err = b.Search("zentralbank", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = b.Search("   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestContextFile(t *testing.T) {
	b := newBase(t)

	cf, err := b.ContextFile("file_caso_2")
	require.NoError(t, err)
	assert.Equal(t, "Caso 2: Organización Feminista", cf.Title)
	assert.Contains(t, cf.Content, "Organización Feminista de Acompañamiento")

	_, err = b.ContextFile("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDir_WriteThrough(t *testing.T) {
	dir := t.TempDir()
	b := newBase(t, WithUserDir(dir))

	doc, err := b.Create("Notas", "# Notas\n\nprimera versión")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Path)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "# Notas\n\nprimera versión", string(data))

	_, err = b.Update(doc.ID, "", "# Notas\n\nsegunda versión")
	require.NoError(t, err)
	data, err = os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "segunda")

	require.NoError(t, b.Delete(doc.ID))
	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestSyncDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "riesgos.md"), []byte("# Riesgos de la oficina\n\nCerradura rota."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "borrador.md"), []byte("sin título"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignorado.txt"), []byte("x"), 0644))

	b := newBase(t)
	require.NoError(t, b.SyncDir(dir))

	doc, err := b.Get("file_riesgos")
	require.NoError(t, err)
	assert.Equal(t, "Riesgos de la oficina", doc.Name)
	assert.Equal(t, FolderUser, doc.FolderID)

	doc, err = b.Get("file_borrador")
	require.NoError(t, err)
	assert.Equal(t, "borrador", doc.Name)
	assert.Equal(t, 8, b.Len())

	require.NoError(t, os.Remove(filepath.Join(dir, "borrador.md")))
	require.NoError(t, b.SyncDir(dir))
	_, err = b.Get("file_borrador")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, b.SyncDir(filepath.Join(dir, "missing")))
}

func TestWatchDir(t *testing.T) {
	// bleve keeps package-level analysis workers alive.
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.WatchDir(ctx, dir) }()

	path := filepath.Join(dir, "vecinos.md")
	// The watcher may not be registered yet; rewrite now and then until it is seen.
	var lastWrite time.Time
	require.Eventually(t, func() bool {
		if time.Since(lastWrite) > time.Second {
			_ = os.WriteFile(path, []byte("# Vecinos\n\nCámaras en la calle."), 0644)
			lastWrite = time.Now()
		}
		_, err := b.Get("file_vecinos")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, err := b.Get("file_vecinos")
		return err != nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	b := newBase(t, WithMetrics(reg))

	assert.Equal(t, 6.0, testutil.ToFloat64(reg.KnowledgeDocuments))

	_, err := b.Create("x", "y")
	require.NoError(t, err)
	assert.Equal(t, 7.0, testutil.ToFloat64(reg.KnowledgeDocuments))

	_, err = b.Search("JURIST", 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.KnowledgeSearchesTotal.WithLabelValues("ok")))
}
