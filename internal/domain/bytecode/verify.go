// Package bytecode compares deployed code against compiled artifacts.
package bytecode

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/anchor/internal/domain"
)

// Outcome is the verdict of a comparison.
type Outcome string

const (
	Match    Outcome = "match"
	Mismatch Outcome = "mismatch"
)

// Report holds the verdict and both normalized code hashes.
type Report struct {
	Outcome      Outcome
	ExpectedHash common.Hash
	ActualHash   common.Hash
}

// Matched reports whether the code was found equal.
func (r Report) Matched() bool {
	return r.Outcome == Match
}

// Verify compares on-chain code with the expected runtime code. Regions
// listed in refs are filled in at deploy time and are zeroed on both sides
// before hashing. Empty on-chain code never matches.
func Verify(expected, onChain []byte, refs []domain.ImmutableReference) Report {
	report := Report{
		ExpectedHash: crypto.Keccak256Hash(Normalize(expected, refs)),
		ActualHash:   crypto.Keccak256Hash(Normalize(onChain, refs)),
	}
	if len(onChain) > 0 && report.ExpectedHash == report.ActualHash {
		report.Outcome = Match
	} else {
		report.Outcome = Mismatch
	}
	return report
}

// Normalize returns a copy of code with every immutable region zeroed.
// Regions running past the end of code are clipped.
func Normalize(code []byte, refs []domain.ImmutableReference) []byte {
	out := make([]byte, len(code))
	copy(out, code)
	for _, ref := range refs {
		if ref.Offset < 0 || ref.Length <= 0 || ref.Offset >= len(out) {
			continue
		}
		end := ref.Offset + min(ref.Length, len(out)-ref.Offset)
		clear(out[ref.Offset:end])
	}
	return out
}
