package components

import (
	"flynext/internal/infra/cache"
	"flynext/internal/infra/payment"
	"flynext/internal/infra/render"
	"flynext/internal/infra/supplier"
	"flynext/internal/pkg/clock"
	"flynext/internal/pkg/config"
	"flynext/internal/usecase"
	"flynext/internal/usecase/commands"
	"flynext/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	payment.NewGateway,
	render.NewTextRenderer,
	func(cfg config.Config) queries.SupplierClient {
		return supplier.NewClient(cfg.Supplier)
	},
	func(client *redis.Client, cfg config.Config) queries.SuggestionCache {
		return cache.NewSuggestionCache(client, cfg.Redis)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewBookingCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewBookingQueries,
		queries.NewInvoiceQueries,
		queries.NewSuggestionQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
