package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trebuchet-org/anchor/internal/domain"
)

// Only the runtime code and its immutable ranges are requested.
var deployedOutputs = []string{
	"evm.deployedBytecode.object",
	"evm.deployedBytecode.immutableReferences",
}

// StandardInput is the solc standard JSON input.
type StandardInput struct {
	Language string                 `json:"language"`
	Sources  map[string]InputSource `json:"sources"`
	Settings map[string]any         `json:"settings"`
}

type InputSource struct {
	Content string `json:"content"`
}

// Target names the contract a compilation is run for.
type Target struct {
	Path string
	Name string
}

// BuildInput rebuilds the standard JSON input that produced an artifact from
// its metadata. The metadata's compilationTarget becomes the output selection
// and its libraries are regrouped by source file.
func BuildInput(meta domain.CompilerMetadata) (*StandardInput, Target, error) {
	settings := map[string]any{}
	if len(meta.Settings) > 0 {
		if err := json.Unmarshal(meta.Settings, &settings); err != nil {
			return nil, Target{}, fmt.Errorf("invalid compiler settings: %w", err)
		}
	}

	target, err := compilationTarget(settings, meta.SourcePath)
	if err != nil {
		return nil, Target{}, err
	}
	delete(settings, "compilationTarget")

	if libs, ok := settings["libraries"].(map[string]any); ok {
		settings["libraries"] = groupLibraries(libs)
	}
	if meta.EVMVersion != "" {
		settings["evmVersion"] = meta.EVMVersion
	}
	settings["outputSelection"] = map[string]any{
		target.Path: map[string]any{
			target.Name: deployedOutputs,
		},
	}

	if len(meta.Sources) == 0 {
		return nil, Target{}, fmt.Errorf("metadata lists no sources")
	}
	sources := make(map[string]InputSource, len(meta.Sources))
	for path, src := range meta.Sources {
		if src == nil || src.Content == "" {
			return nil, Target{}, fmt.Errorf("source %s has no content", path)
		}
		sources[path] = InputSource{Content: src.Content}
	}

	language := meta.Language
	if language == "" {
		language = "Solidity"
	}
	return &StandardInput{Language: language, Sources: sources, Settings: settings}, target, nil
}

func compilationTarget(settings map[string]any, sourcePath string) (Target, error) {
	targets, _ := settings["compilationTarget"].(map[string]any)
	for path, name := range targets {
		if s, ok := name.(string); ok && (sourcePath == "" || path == sourcePath) {
			return Target{Path: path, Name: s}, nil
		}
	}
	return Target{}, fmt.Errorf("metadata has no compilation target")
}

// groupLibraries turns metadata libraries keyed "path:Name" into the nested
// form standard JSON expects. Keys without a path go under the empty path.
func groupLibraries(libs map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any)
	for key, addr := range libs {
		path, name := "", key
		if i := strings.LastIndex(key, ":"); i >= 0 {
			path, name = key[:i], key[i+1:]
		}
		if out[path] == nil {
			out[path] = make(map[string]any)
		}
		out[path][name] = addr
	}
	return out
}

// StandardOutput is the subset of solc standard JSON output that is read.
type StandardOutput struct {
	Errors    []OutputError                        `json:"errors"`
	Contracts map[string]map[string]OutputContract `json:"contracts"`
}

type OutputError struct {
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

type OutputContract struct {
	EVM struct {
		DeployedBytecode struct {
			Object              string                                 `json:"object"`
			ImmutableReferences map[string][]domain.ImmutableReference `json:"immutableReferences"`
		} `json:"deployedBytecode"`
	} `json:"evm"`
}

// Err joins the error severity diagnostics, nil if there are none.
func (o *StandardOutput) Err() error {
	var msgs []string
	for _, e := range o.Errors {
		if e.Severity != "error" {
			continue
		}
		msg := e.FormattedMessage
		if msg == "" {
			msg = e.Message
		}
		msgs = append(msgs, strings.TrimSpace(msg))
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("compilation failed:\n%s", strings.Join(msgs, "\n"))
}
