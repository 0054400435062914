package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

func (r *VerifyRenderer) Render(result *usecase.VerifyContractsResult) error {
	if len(result.Results) == 0 {
		warnStyle.Fprintf(r.out, "No deployment records found on chain %d\n", result.ChainID)
		return nil
	}

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Verifying %d contract(s) on chain %d:\n", len(result.Results), result.ChainID)

	matched := 0
	for _, v := range result.Results {
		fmt.Fprintf(r.out, "  %s %s", r.statusIcon(v.Status), headerStyle.Sprint(v.Name))
		if v.Status != usecase.VerificationNotDeployed {
			fmt.Fprintf(r.out, " at %s", v.Address.Hex())
		}
		fmt.Fprintln(r.out)

		switch v.Status {
		case usecase.VerificationMatch:
			matched++
			okStyle.Fprintf(r.out, "    ✓ Code matches %s\n", v.Source)
		case usecase.VerificationMismatch:
			failStyle.Fprintf(r.out, "    ✗ Code differs from %s\n", v.Source)
			fmt.Fprintf(r.out, "      expected %s\n", hashStyle.Sprint(v.ExpectedHash.Hex()))
			fmt.Fprintf(r.out, "      actual   %s\n", hashStyle.Sprint(v.ActualHash.Hex()))
		case usecase.VerificationNoCode:
			failStyle.Fprintln(r.out, "    ✗ No code at recorded address")
		case usecase.VerificationNotDeployed:
			warnStyle.Fprintln(r.out, "    No deployment record")
		}
		if v.ArtifactDrift {
			warnStyle.Fprintln(r.out, "    ⚠️  Compiler output differs from the artifact on disk")
		}
	}

	fmt.Fprintf(r.out, "\nVerification complete: %d/%d matched\n", matched, len(result.Results))
	return nil
}

func (r *VerifyRenderer) statusIcon(status usecase.VerificationStatus) string {
	switch status {
	case usecase.VerificationMatch:
		return "✅"
	case usecase.VerificationNotDeployed:
		return "⏭️ "
	default:
		return "❌"
	}
}

var _ Renderer[*usecase.VerifyContractsResult] = (*VerifyRenderer)(nil)
