package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/internal/seed"
	"couple-plans-backend-go/pkg/cache"
)

type fakeTailer struct{ events []models.PlanEvent }

func (f *fakeTailer) Tail(_ context.Context, handle func(models.PlanEvent)) error {
	for _, e := range f.events {
		handle(e)
	}
	return nil
}

// testApp wires an App backed by in-memory services with no remote store.
func testApp(t *testing.T) *App {
	t.Helper()
	logger := zap.NewNop()
	store := mirror.New(cache.NewMemoryCache(), nil, logger)
	locations := core.NewLocationService(nil, store, logger)
	plans, err := core.NewPlanService(core.PlanServiceConfig{
		Mirror:        store,
		Locations:     locations,
		Logger:        logger,
		ExportVersion: "1.0.0",
	})
	require.NoError(t, err)

	return &App{
		Plans:     plans,
		Locations: locations,
		Users: []models.User{
			{Username: "sarahi", Email: "sarahi@couple-plans.local", Role: models.RoleUser},
			{Username: "michel", Email: "michel@couple-plans.local", Role: models.RoleAdmin},
		},
		Seed: &seed.Seed{
			Locations: []string{"Monterrey, Nuevo León", "Santiago, Nuevo León"},
			Plans: []seed.Plan{
				{Place: "Mirador Obispado", Type: "Visitar", Time: "Noche", Status: "Pendiente", Location: "Monterrey, Nuevo León"},
				{Place: "Cola de Caballo", Type: "Visitar", Time: "Día", Status: "Pendiente", Location: "Santiago, Nuevo León"},
			},
		},
	}
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCmd_IsRepeatable(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, app, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 locations and 2 plans (0 already present)")

	plans := app.Plans.ListPlans(context.Background(), models.PlanFilter{})
	require.Len(t, plans, 2)
	assert.Equal(t, "michel@couple-plans.local", plans[0].CreatedBy)
	assert.Equal(t, []string{"Monterrey, Nuevo León", "Santiago, Nuevo León"}, app.Locations.ListLocations(context.Background()))

	out, err = execute(t, app, "seed", "--as", "sarahi")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 locations and 0 plans (2 already present)")
}

func TestExportThenImport(t *testing.T) {
	app := testApp(t)
	_, err := execute(t, app, "seed")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	out, err := execute(t, app, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 plans")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export models.ExportFile
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "1.0.0", export.Version)
	assert.Len(t, export.Plans, 2)

	fresh := testApp(t)
	out, err = execute(t, fresh, "import", path, "--as", "sarahi@couple-plans.local")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 plans, skipped 0")
	assert.Len(t, fresh.Plans.ListPlans(context.Background(), models.PlanFilter{}), 2)
}

func TestExportToStdout(t *testing.T) {
	app := testApp(t)
	out, err := execute(t, app, "export", "-o", "-")
	require.NoError(t, err)

	var export models.ExportFile
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.Empty(t, export.Plans)
}

func TestImportCmd_Errors(t *testing.T) {
	app := testApp(t)

	_, err := execute(t, app, "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, app, "import", "whatever.json", "--as", "intruder")
	assert.ErrorContains(t, err, "not an allow-listed collaborator")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"hello":"world"}`), 0o600))
	_, err = execute(t, app, "import", bad)
	assert.ErrorIs(t, err, core.ErrInvalidImport)
}

func TestEventsTail(t *testing.T) {
	app := testApp(t)
	_, err := execute(t, app, "events", "tail")
	assert.ErrorContains(t, err, "RABBITMQ_URL")

	app.Events = &fakeTailer{events: []models.PlanEvent{{
		Type:       models.EventPlanUpserted,
		PlanID:     "p1",
		Place:      "Mirador Obispado",
		Actor:      "michel",
		OccurredAt: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
	}}}
	out, err := execute(t, app, "events", "tail")
	require.NoError(t, err)
	assert.Contains(t, out, "plan.upserted")
	assert.Contains(t, out, "Mirador Obispado (p1)")
}
