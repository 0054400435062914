package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

type recordView struct {
	Name            string    `json:"name" yaml:"name"`
	Address         string    `json:"address" yaml:"address"`
	Dialect         string    `json:"dialect" yaml:"dialect"`
	Factory         string    `json:"factory" yaml:"factory"`
	Salt            string    `json:"salt" yaml:"salt"`
	BytecodeHash    string    `json:"bytecodeHash" yaml:"bytecodeHash"`
	TransactionHash string    `json:"transactionHash,omitempty" yaml:"transactionHash,omitempty"`
	BlockNumber     uint64    `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
	GasUsed         uint64    `json:"gasUsed,omitempty" yaml:"gasUsed,omitempty"`
	Reused          bool      `json:"reused" yaml:"reused"`
	Compiler        string    `json:"compiler,omitempty" yaml:"compiler,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type recordsView struct {
	ChainID uint64       `json:"chainId" yaml:"chainId"`
	Records []recordView `json:"records" yaml:"records"`
}

// RecordsRenderer renders the record set of a chain
type RecordsRenderer struct {
	out    io.Writer
	format Format
}

// NewRecordsRenderer creates a new records renderer
func NewRecordsRenderer(out io.Writer, format Format) *RecordsRenderer {
	return &RecordsRenderer{out: out, format: format}
}

func (r *RecordsRenderer) Render(result *usecase.ShowRecordsResult) error {
	view := toRecordsView(result)
	if r.format == FormatTable || r.format == "" {
		return r.renderTable(view)
	}
	return encode(r.out, r.format, view)
}

func (r *RecordsRenderer) renderTable(view recordsView) error {
	if len(view.Records) == 0 {
		fmt.Fprintf(r.out, "No deployment records found on chain %d\n", view.ChainID)
		return nil
	}

	headerStyle.Fprintf(r.out, "Chain %d\n", view.ChainID)
	t := newTable(r.out, table.Row{"Contract", "Address", "Dialect", "Transaction", "Updated"})
	for _, rec := range view.Records {
		tx := rec.TransactionHash
		switch {
		case tx == "" && rec.Reused:
			tx = "reused"
		case tx == "":
			tx = "-"
		}
		t.AppendRow(table.Row{rec.Name, rec.Address, rec.Dialect, tx, rec.UpdatedAt.Format(time.DateTime)})
	}
	t.Render()
	return nil
}

func toRecordsView(result *usecase.ShowRecordsResult) recordsView {
	view := recordsView{ChainID: result.ChainID, Records: make([]recordView, 0, len(result.Records))}
	for _, named := range result.Records {
		rec := named.Record
		v := recordView{
			Name:         named.Name,
			Address:      rec.Address.Hex(),
			Dialect:      string(rec.Dialect),
			Factory:      rec.Factory.Hex(),
			Salt:         rec.Salt,
			BytecodeHash: rec.BytecodeHash.Hex(),
			Reused:       rec.Reused,
			Compiler:     rec.Metadata.CompilerVersion,
			UpdatedAt:    rec.UpdatedAt,
		}
		if rec.TransactionHash != nil {
			v.TransactionHash = rec.TransactionHash.Hex()
		}
		if rec.Receipt != nil {
			v.BlockNumber = rec.Receipt.BlockNumber
			v.GasUsed = rec.Receipt.GasUsed
		}
		view.Records = append(view.Records, v)
	}
	return view
}

var _ Renderer[*usecase.ShowRecordsResult] = (*RecordsRenderer)(nil)
