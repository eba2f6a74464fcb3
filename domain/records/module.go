package records

import (
	"go.uber.org/fx"

	"github.com/emergent-company/emergent.relations/domain/relations"
	"github.com/emergent-company/emergent.relations/internal/docstore"
)

var Module = fx.Module("records",
	fx.Provide(
		NewHandler,
		func(s docstore.Store) relations.BatchReader { return s },
	),
	fx.Invoke(RegisterRoutes),
)
