//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream clients
		ProvidePolygonClient,
		ProvideFREDClient,
		ProvideCache,

		// Repositories
		ProvideHistoryProvider,
		ProvideMacroProvider,
		ProvideQuoteProvider,
		ProvidePredictionStore,
		ProvideEventPublisher,

		// Use cases
		ProvidePacer,
		ProvideForecaster,
		ProvideValidator,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
