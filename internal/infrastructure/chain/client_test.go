package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContract = "0x363203d21835547daebe7f8fc074a20c958b0965"
	testEmployer = "0x1111111111111111111111111111111111111111"
	testCoworker = "0x2222222222222222222222222222222222222222"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{testContract, true},
		{"0x1111111111111111111111111111111111111111", true},
		{"", false},
		{"0x123", false},
		{"363203d21835547daebe7f8fc074a20c958b096511", false},
		{"0xZZ3203d21835547daebe7f8fc074a20c958b0965", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidAddress(tt.addr), tt.addr)
	}
}

func TestSelectorShape(t *testing.T) {
	a := selector(sigAgreementExists)
	b := selector(sigGetAgreement)

	assert.Len(t, a, 4)
	assert.Len(t, b, 4)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, selector(sigAgreementExists), "selectors are deterministic")
}

func TestCaseKey(t *testing.T) {
	k1 := caseKey("case-0xabc-1")
	k2 := caseKey("case-0xabc-2")

	assert.Len(t, k1, 32)
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, caseKey("case-0xabc-1"))
}

func TestEncodeAddress(t *testing.T) {
	word := encodeAddress(testEmployer)

	require.Len(t, word, 32)
	assert.Equal(t, make([]byte, 12), word[:12])
	assert.Equal(t, "1111111111111111111111111111111111111111", hex.EncodeToString(word[12:]))
}

func TestDecodeHelpers(t *testing.T) {
	buf := make([]byte, 3*32)
	copy(buf[0:32], encodeAddress(testCoworker))
	buf[63] = 1       // word 1: bool true
	buf[95] = 0x2a    // word 2: uint 42

	assert.Equal(t, testCoworker, decodeAddress(buf, 0))
	assert.True(t, decodeBool(buf, 1))
	assert.False(t, decodeBool(buf, 0))
	assert.Equal(t, uint64(42), decodeUint64(buf, 2))
}

// rpcStub answers eth JSON-RPC calls from canned per-method results.
func rpcStub(t *testing.T, results map[string]any, calls *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if calls != nil {
			*calls = append(*calls, req.Method)
		}
		result, ok := results[req.Method]
		require.True(t, ok, "unexpected method %s", req.Method)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  result,
		}))
	}))
}

func newTestClient(t *testing.T, rpcURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		RPCURL:          rpcURL,
		ContractAddress: testContract,
		TxTimeout:       2 * time.Second,
		ReceiptPoll:     5 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadContractAddress(t *testing.T) {
	_, err := NewClient(Config{ContractAddress: "not-an-address"}, zerolog.Nop())
	require.Error(t, err)
}

func TestAgreementExists(t *testing.T) {
	trueWord := "0x" + hex.EncodeToString(append(make([]byte, 31), 1))
	srv := rpcStub(t, map[string]any{"eth_call": trueWord}, nil)
	defer srv.Close()

	exists, err := newTestClient(t, srv.URL).AgreementExists(context.Background(), "case-1")

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetAgreement(t *testing.T) {
	buf := make([]byte, 6*32)
	copy(buf[0:32], encodeAddress(testEmployer))
	copy(buf[32:64], encodeAddress(testCoworker))
	buf[95] = 1   // employerSigned
	buf[127] = 0  // coworkerSigned
	buf[159] = 99 // createdAt
	buf[191] = 1  // exists

	srv := rpcStub(t, map[string]any{"eth_call": "0x" + hex.EncodeToString(buf)}, nil)
	defer srv.Close()

	ag, err := newTestClient(t, srv.URL).GetAgreement(context.Background(), "case-1")

	require.NoError(t, err)
	assert.Equal(t, testEmployer, ag.Employer)
	assert.Equal(t, testCoworker, ag.Coworker)
	assert.True(t, ag.EmployerSigned)
	assert.False(t, ag.CoworkerSigned)
	assert.Equal(t, uint64(99), ag.CreatedAt)
	assert.True(t, ag.Exists)
}

func TestCreateAgreement(t *testing.T) {
	var calls []string
	srv := rpcStub(t, map[string]any{
		"eth_sendTransaction":       "0xdeadbeef",
		"eth_getTransactionReceipt": map[string]string{"status": "0x1"},
	}, &calls)
	defer srv.Close()

	res, err := newTestClient(t, srv.URL).CreateAgreement(context.Background(), "case-1", testEmployer, testCoworker)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "0xdeadbeef", res.TxHash)
	assert.Contains(t, calls, "eth_sendTransaction")
	assert.Contains(t, calls, "eth_getTransactionReceipt")
}

func TestCreateAgreementReverted(t *testing.T) {
	srv := rpcStub(t, map[string]any{
		"eth_sendTransaction":       "0xdeadbeef",
		"eth_getTransactionReceipt": map[string]string{"status": "0x0"},
	}, nil)
	defer srv.Close()

	res, err := newTestClient(t, srv.URL).CreateAgreement(context.Background(), "case-1", testEmployer, testCoworker)

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "transaction reverted", res.Error)
}

func TestCreateAgreementRejectsBadPartyAddress(t *testing.T) {
	c := newTestClient(t, "http://localhost:0")

	_, err := c.CreateAgreement(context.Background(), "case-1", "bogus", testCoworker)
	require.Error(t, err)

	_, err = c.CreateAgreement(context.Background(), "case-1", testEmployer, "bogus")
	require.Error(t, err)
}
