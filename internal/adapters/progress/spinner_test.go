package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

func TestSinkNonInteractive(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	sink := NewSink(&buf, false)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "factory", Message: "Funding factory deployer", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "deploy", Current: 2, Total: 3, Message: "Processing Counter", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "deploy", Spinner: false})
	sink.Info("Deployed Counter")
	sink.Error("something failed")

	assert.Equal(t,
		"factory Funding factory deployer\n"+
			"deploy [2/3] Processing Counter\n"+
			"Deployed Counter\n"+
			"something failed\n",
		buf.String())
}

func TestFormatEvent(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	assert.Equal(t, "verify [1/2] Verifying Counter", formatEvent(usecase.ProgressEvent{Stage: "verify", Current: 1, Total: 2, Message: "Verifying Counter"}))
	assert.Equal(t, "deploy Processing Counter", formatEvent(usecase.ProgressEvent{Stage: "deploy", Current: 1, Total: 1, Message: "Processing Counter"}))
	assert.Equal(t, "custom message", formatEvent(usecase.ProgressEvent{Stage: "custom", Message: "custom message"}))
	assert.Equal(t, "", formatEvent(usecase.ProgressEvent{Stage: "deploy"}))
}

func TestProvideSink(t *testing.T) {
	assert.True(t, ProvideSink(&config.RuntimeConfig{}).interactive)
	assert.False(t, ProvideSink(&config.RuntimeConfig{NonInteractive: true}).interactive)
	assert.False(t, ProvideSink(&config.RuntimeConfig{Debug: true}).interactive)
}
