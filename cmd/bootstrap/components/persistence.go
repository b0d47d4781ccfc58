package components

import (
	"flynext/internal/infra/readstore"
	"flynext/internal/infra/uow"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		// UnitOfWork owns transactional repositories; readstores query the
		// pool directly on the read side.
		uow.NewPostgresUoW,
		readstore.NewBookingReadStore,
		readstore.NewInvoiceReadStore,
		readstore.NewUserReadStore,
	),
)
