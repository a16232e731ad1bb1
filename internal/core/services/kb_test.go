package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/retrieval"
)

// --- Mock implementations ---

// mockKBStore implements driven.KBStore for testing.
type mockKBStore struct {
	saved   []*domain.KBDocument
	saveErr error
}

func (m *mockKBStore) SaveDocument(_ context.Context, doc *domain.KBDocument) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, doc)
	return nil
}

func (m *mockKBStore) GetDocument(_ context.Context, id string) (*domain.KBDocument, error) {
	for _, doc := range m.saved {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockKBStore) GetDocumentByHash(_ context.Context, hash string) (*domain.KBDocument, error) {
	for _, doc := range m.saved {
		if doc.Hash == hash {
			return doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockKBStore) ListDocuments(_ context.Context) ([]domain.KBDocument, error) {
	out := make([]domain.KBDocument, 0, len(m.saved))
	for _, doc := range m.saved {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockKBStore) DeleteDocument(_ context.Context, _ string) error {
	return nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values  map[string]any
	setErr  error
	saveErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return m.saveErr }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/policykb-test.toml"
}

const policyFixture = `Articulo 1 - Objeto
La presente politica regula el trabajo remoto y el teletrabajo para todo el personal.

Articulo 2 - Jornada
La jornada laboral ordinaria sera de ocho horas diarias y cuarenta y ocho semanales.

Articulo 3 - Edad minima
Queda prohibida la contratacion de menores de quince anos en cualquier modalidad.`

// --- LoadKB ---

func TestKBService_LoadKB_SegmentsAndIndexes(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	bundle, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "2026-08-29")

	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, "politica.md", bundle.KBName)
	assert.Equal(t, "2026-08-29", bundle.KBUpdatedAt)
	assert.NotEmpty(t, bundle.KBHash)
	assert.Len(t, bundle.Chunks, 3)
	assert.Equal(t, len(bundle.Chunks), bundle.ChunksTotal)
	assert.Same(t, bundle, svc.Bundle())
}

func TestKBService_LoadKB_DefaultsName(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	bundle, err := svc.LoadKB(context.Background(), policyFixture, "  ", "")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultKBName, bundle.KBName)
}

func TestKBService_LoadKB_EmptyText(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	bundle, err := svc.LoadKB(context.Background(), "   \n\t ", "politica.md", "")

	require.NoError(t, err)
	assert.True(t, bundle.Empty())
	assert.Empty(t, bundle.KBHash)
}

func TestKBService_LoadKB_IdenticalTextSameHash(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	first, err := svc.LoadKB(context.Background(), policyFixture, "a.md", "")
	require.NoError(t, err)
	second, err := svc.LoadKB(context.Background(), policyFixture, "b.md", "")
	require.NoError(t, err)

	assert.Equal(t, first.KBHash, second.KBHash)
	assert.Equal(t, first.Chunks, second.Chunks)
}

func TestKBService_LoadKB_PersistsDocument(t *testing.T) {
	store := &mockKBStore{}
	svc := NewKBService(nil, store, nil)

	bundle, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "2026-08-29")

	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	doc := store.saved[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "politica.md", doc.Name)
	assert.Equal(t, bundle.KBHash, doc.Hash)
	assert.Equal(t, "2026-08-29", doc.UpdatedAt)
	assert.False(t, doc.StoredAt.IsZero())
}

func TestKBService_LoadKB_StoreErrorPropagates(t *testing.T) {
	store := &mockKBStore{saveErr: errors.New("disk full")}
	svc := NewKBService(nil, store, nil)

	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, svc.Bundle())
}

// --- Retrieve ---

func TestKBService_Retrieve_ReturnsRelevantChunks(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "cual es la jornada laboral", 2)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, strings.ToLower(results[0].Chunk.Text), "jornada")

	debug := svc.LastDebug()
	assert.Equal(t, retrieval.ReasonBM25, debug.Reason)
	assert.Equal(t, "politica.md", debug.KBName)
	assert.Equal(t, 3, debug.ChunksTotal)
}

func TestKBService_Retrieve_NoKB(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	_, err := svc.Retrieve(context.Background(), "jornada laboral", 2)

	assert.ErrorIs(t, err, domain.ErrNoKB)
}

func TestKBService_Retrieve_NegativeK(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	_, err = svc.Retrieve(context.Background(), "jornada", -1)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKBService_Retrieve_ZeroKUsesConfiguredDefault(t *testing.T) {
	cfg := newMockConfigStore()
	cfg.values[keyTopK] = 1
	svc := NewKBService(nil, nil, cfg)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "jornada laboral vacaciones", 0)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

// --- CompactSources ---

func TestKBService_CompactSources(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "jornada laboral", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	view, err := svc.CompactSources(results, 0)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(view.Line, "Fuentes:"))
	require.NotEmpty(t, view.CompactRows)
	assert.Contains(t, view.CompactRows[0].Compact, "politica.md")
}

func TestKBService_CompactSources_EmptyResults(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	view, err := svc.CompactSources(nil, 0)

	require.NoError(t, err)
	assert.Empty(t, view.Line)
	assert.Empty(t, view.CompactRows)
}

func TestKBService_CompactSources_RejectsNegativeBudget(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "jornada laboral", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	view, err := svc.CompactSources(results, -5)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, view.CompactRows)
}

// --- Mode ---

func TestKBService_Mode_DefaultsToGeneral(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	assert.Equal(t, domain.KBModeGeneral, svc.Mode())
}

func TestKBService_Mode_ReadsConfigAlias(t *testing.T) {
	cfg := newMockConfigStore()
	cfg.values[keyKBMode] = "solo kb (estricto)"

	svc := NewKBService(nil, nil, cfg)

	assert.Equal(t, domain.KBModeStrict, svc.Mode())
}

func TestKBService_SetMode_Persists(t *testing.T) {
	cfg := newMockConfigStore()
	svc := NewKBService(nil, nil, cfg)

	err := svc.SetMode(domain.KBModeStrict)

	require.NoError(t, err)
	assert.Equal(t, domain.KBModeStrict, svc.Mode())
	assert.Equal(t, string(domain.KBModeStrict), cfg.values[keyKBMode])
}

func TestKBService_SetMode_RejectsUnknown(t *testing.T) {
	svc := NewKBService(nil, nil, nil)

	err := svc.SetMode(domain.KBMode("hibrido"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.KBModeGeneral, svc.Mode())
}

// --- TopK ---

func TestKBService_TopK(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	assert.Equal(t, retrieval.DefaultK, svc.TopK())

	cfg := newMockConfigStore()
	cfg.values[keyTopK] = 7
	svc = NewKBService(nil, nil, cfg)
	assert.Equal(t, 7, svc.TopK())
}

func TestKBService_ConcurrentRetrieve(t *testing.T) {
	svc := NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), policyFixture, "politica.md", "")
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 25; j++ {
				_, err := svc.Retrieve(context.Background(), "jornada laboral", 2)
				assert.NoError(t, err)
				_ = svc.LastDebug()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
