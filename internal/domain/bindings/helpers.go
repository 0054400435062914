package bindings

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractDeployerAddress is the system contract that performs every
// contract creation on zkSync style chains.
var ContractDeployerAddress = common.HexToAddress("0x0000000000000000000000000000000000008006")

// DeployedAddresses returns the addresses announced by ContractDeployed
// events in logs, in log order. Logs of other events are skipped.
func (contractDeployer *ContractDeployer) DeployedAddresses(logs []*types.Log) []common.Address {
	var addrs []common.Address
	for _, l := range logs {
		if l.Address != ContractDeployerAddress {
			continue
		}
		ev, err := contractDeployer.UnpackContractDeployedEvent(l)
		if err != nil {
			continue
		}
		addrs = append(addrs, ev.ContractAddress)
	}
	return addrs
}
