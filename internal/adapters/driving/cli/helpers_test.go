package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iguales-labs/policykb-cli/internal/core/services"
)

const testPolicy = `Articulo 1 - Objeto
La presente politica regula el trabajo remoto y el teletrabajo.

Articulo 2 - Jornada
La jornada laboral ordinaria sera de ocho horas diarias.

Articulo 3 - Edad minima
Queda prohibida la contratacion de menores de quince anos.`

// setupTestServices wires a KB service with a loaded fixture into the
// command tree and returns a cleanup restoring the previous wiring.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	oldKB := kbService
	oldConfig := configStore

	svc := services.NewKBService(nil, nil, nil)
	_, err := svc.LoadKB(context.Background(), testPolicy, "politica.md", "2026-08-29")
	require.NoError(t, err)

	kbService = svc
	configStore = nil

	return func() {
		kbService = oldKB
		configStore = oldConfig
	}
}

// newEmptyService returns a KB service with nothing loaded.
func newEmptyService() *services.KBService {
	return services.NewKBService(nil, nil, nil)
}

// writeTestPolicy writes the fixture to a temp file and returns its path.
func writeTestPolicy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "politica.md")
	require.NoError(t, os.WriteFile(path, []byte(testPolicy), 0600))
	return path
}
