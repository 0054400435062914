package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

// AddressRenderer renders precomputed deployment addresses
type AddressRenderer struct {
	out io.Writer
}

// NewAddressRenderer creates a new address renderer
func NewAddressRenderer(out io.Writer) *AddressRenderer {
	return &AddressRenderer{out: out}
}

func (r *AddressRenderer) Render(result *usecase.PreviewAddressesResult) error {
	fmt.Fprintf(r.out, "Factory: %s\n", result.Factory.Hex())
	fmt.Fprintf(r.out, "Salt:    %s\n", result.Salt.Hex())
	fmt.Fprintf(r.out, "Dialect: %s\n\n", result.Dialect)

	t := newTable(r.out, table.Row{"Contract", "Address", "Bytecode Hash"})
	for _, target := range result.Targets {
		t.AppendRow(table.Row{target.ContractName, target.ExpectedAddress.Hex(), hashStyle.Sprint(target.BytecodeHash.Hex())})
	}
	t.Render()
	return nil
}

// ChainsRenderer renders the factory deployment registry
type ChainsRenderer struct {
	out io.Writer
}

// NewChainsRenderer creates a new chains renderer
func NewChainsRenderer(out io.Writer) *ChainsRenderer {
	return &ChainsRenderer{out: out}
}

func (r *ChainsRenderer) Render(entries []usecase.ChainEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No chains in the factory registry")
		return nil
	}

	t := newTable(r.out, table.Row{"Chain ID", "Factory", "Deployer", "Funding (ETH)"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.ChainID, e.Info.Factory.Hex(), e.Info.Deployer.Hex(), FormatEther(e.Info.Funding)})
	}
	t.Render()
	infoStyle.Fprintf(r.out, "\n%d chain(s) supported\n", len(entries))
	return nil
}

var (
	_ Renderer[*usecase.PreviewAddressesResult] = (*AddressRenderer)(nil)
	_ Renderer[[]usecase.ChainEntry]            = (*ChainsRenderer)(nil)
)
