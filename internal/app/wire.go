//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/anchor/internal/adapters"
	"github.com/trebuchet-org/anchor/internal/config"
	"github.com/trebuchet-org/anchor/internal/logging"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewEnsureFactory,
		usecase.NewDeployContracts,
		usecase.NewVerifyContracts,
		usecase.NewShowRecords,
		usecase.NewResetRecords,
		usecase.NewPreviewAddresses,
		usecase.NewListChains,

		// App
		NewApp,
	)
	return nil, nil
}
