package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// FactoryRenderer renders the outcome of the factory bootstrap
type FactoryRenderer struct {
	out io.Writer
}

// NewFactoryRenderer creates a new factory renderer
func NewFactoryRenderer(out io.Writer) *FactoryRenderer {
	return &FactoryRenderer{out: out}
}

func (r *FactoryRenderer) Render(result *usecase.EnsureFactoryResult) error {
	if !result.Bootstrapped {
		fmt.Fprintf(r.out, "Factory already deployed at %s on chain %d\n", result.Factory.Hex(), result.ChainID)
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Factory deployed at %s on chain %d (%d transactions)",
		result.Factory.Hex(), result.ChainID, result.TransactionCount())))
	fmt.Fprintf(r.out, "  Funding tx: %s\n", hashStyle.Sprint(hashOrDash(result.FundingTx)))
	fmt.Fprintf(r.out, "  Deploy tx:  %s\n", hashStyle.Sprint(hashOrDash(result.DeployTx)))
	return nil
}

// DeployRenderer renders the result of a deployment run
type DeployRenderer struct {
	out     io.Writer
	factory *FactoryRenderer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out, factory: NewFactoryRenderer(out)}
}

// Render prints the per contract outcome table followed by a review section
// listing every reused contract whose code differs from its artifact.
func (r *DeployRenderer) Render(result *usecase.DeployContractsResult) error {
	if result.Factory != nil {
		if err := r.factory.Render(result.Factory); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	}

	if len(result.Outcomes) > 0 {
		t := newTable(r.out, table.Row{"Contract", "Status", "Address", "Transaction"})
		for _, o := range result.Outcomes {
			status := okStyle.Sprint(title(string(o.Status)))
			if o.Warning != nil {
				status = warnStyle.Sprint(title(string(o.Status)) + " (mismatch)")
			}
			t.AppendRow(table.Row{o.Name, status, o.Address.Hex(), hashOrDash(o.TransactionHash)})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	deployed := result.DeployCount()
	fmt.Fprintf(r.out, "Deployed %d, reused %d on chain %d\n", deployed, len(result.Outcomes)-deployed, result.ChainID)

	if len(result.Warnings) == 0 {
		return nil
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Review required: %d reused contract(s) differ from their artifacts", len(result.Warnings))))
	for _, w := range result.Warnings {
		fmt.Fprintf(r.out, "  %s at %s\n", headerStyle.Sprint(w.Contract), w.Address.Hex())
		fmt.Fprintf(r.out, "    expected code hash %s\n", hashStyle.Sprint(w.ExpectedHash.Hex()))
		fmt.Fprintf(r.out, "    on-chain code hash %s\n", hashStyle.Sprint(w.ActualHash.Hex()))
	}
	return nil
}

var (
	_ Renderer[*usecase.EnsureFactoryResult]   = (*FactoryRenderer)(nil)
	_ Renderer[*usecase.DeployContractsResult] = (*DeployRenderer)(nil)
)
