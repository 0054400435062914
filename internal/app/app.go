package app

import (
	"github.com/trebuchet-org/anchor/internal/adapters/progress"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Gateway  usecase.ChainGateway
	Progress *progress.Sink

	// Use cases
	EnsureFactory    *usecase.EnsureFactory
	DeployContracts  *usecase.DeployContracts
	VerifyContracts  *usecase.VerifyContracts
	ShowRecords      *usecase.ShowRecords
	ResetRecords     *usecase.ResetRecords
	PreviewAddresses *usecase.PreviewAddresses
	ListChains       *usecase.ListChains
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	gateway usecase.ChainGateway,
	sink *progress.Sink,
	ensureFactory *usecase.EnsureFactory,
	deployContracts *usecase.DeployContracts,
	verifyContracts *usecase.VerifyContracts,
	showRecords *usecase.ShowRecords,
	resetRecords *usecase.ResetRecords,
	previewAddresses *usecase.PreviewAddresses,
	listChains *usecase.ListChains,
) (*App, error) {
	return &App{
		Config:           cfg,
		Gateway:          gateway,
		Progress:         sink,
		EnsureFactory:    ensureFactory,
		DeployContracts:  deployContracts,
		VerifyContracts:  verifyContracts,
		ShowRecords:      showRecords,
		ResetRecords:     resetRecords,
		PreviewAddresses: previewAddresses,
		ListChains:       listChains,
	}, nil
}

// Close stops the progress output and drops the chain connection.
func (a *App) Close() {
	a.Progress.Stop()
	if c, ok := a.Gateway.(interface{ Close() }); ok {
		c.Close()
	}
}
