package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/chain"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/metrics"
)

// Method signatures of the agreement registry contract.
const (
	sigCreateAgreement = "createAgreement(bytes32,address,address)"
	sigAgreementExists = "agreementExists(bytes32)"
	sigGetAgreement    = "getAgreement(bytes32)"
	sigIsFullySigned   = "isFullySigned(bytes32)"
)

const wordSize = 32

// Config holds the chain connection settings.
type Config struct {
	RPCURL          string
	ContractAddress string
	FromAddress     string
	TxTimeout       time.Duration
	ReceiptPoll     time.Duration
}

// Client implements chain.Registrar over raw JSON-RPC. Transaction signing
// is delegated to the node behind the RPC endpoint via eth_sendTransaction.
type Client struct {
	httpClient *resty.Client
	cfg        Config
	log        zerolog.Logger
}

// NewClient creates a JSON-RPC backed registrar client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if !IsValidAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", cfg.ContractAddress)
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 90 * time.Second
	}
	if cfg.ReceiptPoll <= 0 {
		cfg.ReceiptPoll = 2 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(cfg.RPCURL).
			SetHeader("Content-Type", "application/json"),
		cfg: cfg,
		log: log.With().Str("component", "chain-client").Logger(),
	}, nil
}

// Ensure interface compliance.
var _ chain.Registrar = (*Client)(nil)

// IsValidAddress reports whether s looks like a 0x-prefixed 20-byte hex
// address.
func IsValidAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// CreateAgreement registers the agreement for a case and waits for the
// transaction receipt.
func (c *Client) CreateAgreement(ctx context.Context, caseID, employerAddress, coworkerAddress string) (*chain.TxResult, error) {
	if !IsValidAddress(employerAddress) {
		return nil, fmt.Errorf("invalid employer address: %s", employerAddress)
	}
	if !IsValidAddress(coworkerAddress) {
		return nil, fmt.Errorf("invalid coworker address: %s", coworkerAddress)
	}

	data := "0x" + hex.EncodeToString(append(append(append(
		selector(sigCreateAgreement),
		caseKey(caseID)...),
		encodeAddress(employerAddress)...),
		encodeAddress(coworkerAddress)...))

	tx := map[string]string{
		"to":   c.cfg.ContractAddress,
		"data": data,
	}
	if c.cfg.FromAddress != "" {
		tx["from"] = c.cfg.FromAddress
	}

	started := time.Now()
	var txHash string
	if err := c.call(ctx, "eth_sendTransaction", []any{tx}, &txHash); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	c.log.Info().Str("tx_hash", txHash).Str("case_id", caseID).Msg("agreement transaction sent")

	ok, err := c.waitReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	metrics.RecordChainTx(time.Since(started).Seconds())
	if !ok {
		return &chain.TxResult{Success: false, TxHash: txHash, Error: "transaction reverted"}, nil
	}
	return &chain.TxResult{Success: true, TxHash: txHash}, nil
}

// AgreementExists reads the registry without a transaction.
func (c *Client) AgreementExists(ctx context.Context, caseID string) (bool, error) {
	result, err := c.ethCall(ctx, sigAgreementExists, caseKey(caseID))
	if err != nil {
		return false, err
	}
	return decodeBool(result, 0), nil
}

// GetAgreement reads the full agreement record for a case.
func (c *Client) GetAgreement(ctx context.Context, caseID string) (*chain.Agreement, error) {
	result, err := c.ethCall(ctx, sigGetAgreement, caseKey(caseID))
	if err != nil {
		return nil, err
	}
	if len(result) < 6*wordSize {
		return nil, fmt.Errorf("short getAgreement response: %d bytes", len(result))
	}
	return &chain.Agreement{
		Employer:       decodeAddress(result, 0),
		Coworker:       decodeAddress(result, 1),
		EmployerSigned: decodeBool(result, 2),
		CoworkerSigned: decodeBool(result, 3),
		CreatedAt:      decodeUint64(result, 4),
		Exists:         decodeBool(result, 5),
	}, nil
}

// IsFullySigned reports whether both parties have signed.
func (c *Client) IsFullySigned(ctx context.Context, caseID string) (bool, error) {
	result, err := c.ethCall(ctx, sigIsFullySigned, caseKey(caseID))
	if err != nil {
		return false, err
	}
	return decodeBool(result, 0), nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	var envelope rpcResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}).
		SetResult(&envelope).
		Post("")
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: rpc http error: %s", method, resp.Status())
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if result == nil || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

func (c *Client) ethCall(ctx context.Context, signature string, arg []byte) ([]byte, error) {
	data := "0x" + hex.EncodeToString(append(selector(signature), arg...))
	var raw string
	err := c.call(ctx, "eth_call", []any{
		map[string]string{"to": c.cfg.ContractAddress, "data": data},
		"latest",
	}, &raw)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimPrefix(raw, "0x"))
}

type receipt struct {
	Status string `json:"status"`
}

// waitReceipt polls until the transaction is mined or the timeout elapses.
func (c *Client) waitReceipt(ctx context.Context, txHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TxTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.ReceiptPoll)
	defer ticker.Stop()

	for {
		var r *receipt
		if err := c.call(ctx, "eth_getTransactionReceipt", []any{txHash}, &r); err != nil {
			return false, err
		}
		if r != nil {
			return r.Status == "0x1", nil
		}

		select {
		case <-ctx.Done():
			return false, fmt.Errorf("transaction %s not mined: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// selector returns the first four bytes of the keccak256 hash of the method
// signature.
func selector(signature string) []byte {
	return keccak256([]byte(signature))[:4]
}

// caseKey maps a case id onto the bytes32 registry key.
func caseKey(caseID string) []byte {
	return keccak256([]byte(caseID))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// encodeAddress left-pads a 20-byte address to one ABI word.
func encodeAddress(addr string) []byte {
	raw, _ := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
	word := make([]byte, wordSize)
	copy(word[wordSize-len(raw):], raw)
	return word
}

func word(data []byte, index int) []byte {
	return data[index*wordSize : (index+1)*wordSize]
}

func decodeAddress(data []byte, index int) string {
	return "0x" + hex.EncodeToString(word(data, index)[wordSize-20:])
}

func decodeBool(data []byte, index int) bool {
	if len(data) < (index+1)*wordSize {
		return false
	}
	return word(data, index)[wordSize-1] == 1
}

func decodeUint64(data []byte, index int) uint64 {
	var v uint64
	for _, b := range word(data, index)[wordSize-8:] {
		v = v<<8 | uint64(b)
	}
	return v
}
