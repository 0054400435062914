package artifacts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bytecode"
)

// foundryArtifact is the JSON layout forge writes per contract.
type foundryArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
	DeployedBytecode struct {
		Object              string                                 `json:"object"`
		ImmutableReferences map[string][]domain.ImmutableReference `json:"immutableReferences"`
	} `json:"deployedBytecode"`
	Metadata    json.RawMessage `json:"metadata"`
	RawMetadata string          `json:"rawMetadata"`
}

type solcMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string                    `json:"language"`
	Settings json.RawMessage           `json:"settings"`
	Sources  map[string]*domain.Source `json:"sources"`
}

type solcSettings struct {
	CompilationTarget map[string]string `json:"compilationTarget"`
	EVMVersion        string            `json:"evmVersion"`
}

// parseArtifact decodes a forge artifact. It returns nil without error for
// artifacts without init code, such as interfaces and abstract contracts.
func parseArtifact(name string, data []byte) (*domain.ContractArtifact, error) {
	var raw foundryArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if isEmptyCode(raw.Bytecode.Object) {
		return nil, nil
	}

	code, err := decodeCode(raw.Bytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("bytecode of %s: %w", name, err)
	}
	deployed, err := decodeCode(raw.DeployedBytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("deployed bytecode of %s: %w", name, err)
	}
	metadata, err := parseMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", name, err)
	}

	return &domain.ContractArtifact{
		Name:                name,
		Bytecode:            code,
		DeployedBytecode:    deployed,
		ImmutableReferences: bytecode.FlattenImmutables(raw.DeployedBytecode.ImmutableReferences),
		ABI:                 raw.ABI,
		Metadata:            metadata,
	}, nil
}

func isEmptyCode(object string) bool {
	return object == "" || object == "0x"
}

func decodeCode(object string) ([]byte, error) {
	if isEmptyCode(object) {
		return nil, nil
	}
	if strings.Contains(object, "__$") {
		return nil, fmt.Errorf("code has unlinked library references")
	}
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	return hexutil.Decode(object)
}

// parseMetadata reads the compiler metadata. Forge writes it both as an
// object and as the raw string solc produced; either is accepted.
func parseMetadata(raw foundryArtifact) (domain.CompilerMetadata, error) {
	var meta solcMetadata
	switch {
	case len(raw.Metadata) > 0 && raw.Metadata[0] == '{':
		if err := json.Unmarshal(raw.Metadata, &meta); err != nil {
			return domain.CompilerMetadata{}, err
		}
	case len(raw.Metadata) > 0 && raw.Metadata[0] == '"':
		var s string
		if err := json.Unmarshal(raw.Metadata, &s); err != nil {
			return domain.CompilerMetadata{}, err
		}
		if err := json.Unmarshal([]byte(s), &meta); err != nil {
			return domain.CompilerMetadata{}, err
		}
	case raw.RawMetadata != "":
		if err := json.Unmarshal([]byte(raw.RawMetadata), &meta); err != nil {
			return domain.CompilerMetadata{}, err
		}
	default:
		return domain.CompilerMetadata{}, nil
	}

	out := domain.CompilerMetadata{
		Language:        meta.Language,
		CompilerVersion: meta.Compiler.Version,
		Settings:        meta.Settings,
		Sources:         meta.Sources,
	}
	if len(meta.Settings) > 0 {
		var settings solcSettings
		if err := json.Unmarshal(meta.Settings, &settings); err != nil {
			return domain.CompilerMetadata{}, fmt.Errorf("invalid settings: %w", err)
		}
		out.EVMVersion = settings.EVMVersion
		for path := range settings.CompilationTarget {
			out.SourcePath = path
		}
	}
	return out, nil
}
