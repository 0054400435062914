package chain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/config"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcHandler func(params []json.RawMessage) (any, *rpcError)

// fakeNode is a minimal JSON-RPC server answering from per method handlers.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string]int
	server   *httptest.Server
}

func newFakeNode(t *testing.T, chainID string) *fakeNode {
	t.Helper()
	n := &fakeNode{
		handlers: make(map[string]rpcHandler),
		calls:    make(map[string]int),
	}
	n.handle("eth_chainId", func([]json.RawMessage) (any, *rpcError) { return chainID, nil })
	n.server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.server.Close)
	return n
}

func (n *fakeNode) handle(method string, h rpcHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) result(method string, v any) {
	n.handle(method, func([]json.RawMessage) (any, *rpcError) { return v, nil })
}

func (n *fakeNode) callCount(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	h := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		resp["error"] = &rpcError{Code: -32601, Message: "method " + req.Method + " not found"}
	} else if result, rerr := h(req.Params); rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) network(dialect domain.Dialect) *config.Network {
	return &config.Network{
		Name:           "local",
		RPCURL:         n.server.URL,
		Dialect:        dialect,
		PollInterval:   10 * time.Millisecond,
		ReceiptTimeout: 2 * time.Second,
	}
}

var emptyBloom = "0x" + strings.Repeat("0", 512)

func receiptJSON(txHash, contractAddress string, logs []map[string]any) map[string]any {
	if logs == nil {
		logs = []map[string]any{}
	}
	r := map[string]any{
		"type":              "0x2",
		"status":            "0x1",
		"cumulativeGasUsed": "0x5208",
		"logsBloom":         emptyBloom,
		"logs":              logs,
		"transactionHash":   txHash,
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x1",
		"blockHash":         "0x" + strings.Repeat("ab", 32),
		"blockNumber":       "0x10",
		"transactionIndex":  "0x0",
	}
	if contractAddress != "" {
		r["contractAddress"] = contractAddress
	}
	return r
}

func logJSON(txHash, address string, topics []string) map[string]any {
	return map[string]any{
		"address":          address,
		"topics":           topics,
		"data":             "0x",
		"blockNumber":      "0x10",
		"transactionHash":  txHash,
		"transactionIndex": "0x0",
		"blockHash":        "0x" + strings.Repeat("ab", 32),
		"logIndex":         "0x0",
		"removed":          false,
	}
}
