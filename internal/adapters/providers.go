package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/anchor/internal/adapters/artifacts"
	"github.com/trebuchet-org/anchor/internal/adapters/chain"
	"github.com/trebuchet-org/anchor/internal/adapters/compiler"
	"github.com/trebuchet-org/anchor/internal/adapters/progress"
	"github.com/trebuchet-org/anchor/internal/adapters/records"
	"github.com/trebuchet-org/anchor/internal/adapters/registry"
	"github.com/trebuchet-org/anchor/internal/adapters/signer"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// ChainSet provides the signer and the gateway of the selected network
var ChainSet = wire.NewSet(
	signer.ProvideSigner,
	chain.ProvideGateway,
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	records.ProvideFileStore,
	wire.Bind(new(usecase.RecordStore), new(*records.FileStore)),

	artifacts.ProvideSource,
	wire.Bind(new(usecase.ArtifactSource), new(*artifacts.Source)),
)

// RegistrySet provides the factory deployment registry
var RegistrySet = wire.NewSet(
	registry.ProvideRegistry,
	wire.Bind(new(usecase.DeploymentInfoRegistry), new(*registry.Registry)),
)

// CompilerSet provides the solc backed compiler
var CompilerSet = wire.NewSet(
	compiler.ProvideService,
	wire.Bind(new(usecase.Compiler), new(*compiler.Service)),
)

// ProgressSet provides the terminal progress sink
var ProgressSet = wire.NewSet(
	progress.ProvideSink,
	wire.Bind(new(usecase.ProgressSink), new(*progress.Sink)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ChainSet,
	FSSet,
	RegistrySet,
	CompilerSet,
	ProgressSet,
)
