package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/emergent-company/emergent.relations/internal/config"
)

func TestBackendModuleMemory(t *testing.T) {
	var store Store
	app := fxtest.New(t,
		BackendModule(config.BackendMemory),
		fx.Populate(&store),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, store.Ping(t.Context()))
}

func TestModuleForUnknownFallsBackToMemory(t *testing.T) {
	var store Store
	fxtest.New(t, ModuleFor("unknown"), fx.Populate(&store)).RequireStart().RequireStop()

	assert.IsType(t, &MemoryStore{}, store)
}
