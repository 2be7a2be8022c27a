// Package stellar is the ledger-facing helper: account and history queries
// against Horizon, native payment submission and explorer links.
package stellar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"
)

const (
	testnetHorizonURL = "https://horizon-testnet.stellar.org"
	publicHorizonURL  = "https://horizon.stellar.org"
	explorerBaseURL   = "https://stellar.expert/explorer"

	// DefaultHistoryLimit is the page size of GetRecentTransactions.
	DefaultHistoryLimit = 10
	// txTimeout bounds how long a built transaction stays valid.
	txTimeout = 180
)

// Signer holds signing authority for the source account.
type Signer interface {
	Sign(ctx context.Context, tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error)
}

// Options configures a Client.
type Options struct {
	Network    Network
	HorizonURL string // overrides the network default
	Timeout    time.Duration
	Signer     Signer
	Logger     *log.Logger
}

// Client wraps a Horizon client for one network.
type Client struct {
	horizon    *horizonclient.Client
	network    Network
	passphrase string
	signer     Signer
	logger     *log.Logger
}

// New builds a Client. Unknown networks fall back to testnet.
func New(opts Options) *Client {
	net := opts.Network
	if net != Public {
		net = Testnet
	}

	url := opts.HorizonURL
	passphrase := network.TestNetworkPassphrase
	if net == Public {
		passphrase = network.PublicNetworkPassphrase
		if url == "" {
			url = publicHorizonURL
		}
	} else if url == "" {
		url = testnetHorizonURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		horizon: &horizonclient.Client{
			HorizonURL: strings.TrimSuffix(url, "/") + "/",
			HTTP:       &http.Client{Timeout: timeout},
		},
		network:    net,
		passphrase: passphrase,
		signer:     opts.Signer,
		logger:     opts.Logger,
	}
}

// Network returns the network the client talks to.
func (c *Client) Network() Network { return c.network }

// GetBalance loads the account and splits its native and credit balances.
func (c *Client) GetBalance(ctx context.Context, address string) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	c.debug("loading account", "address", address)

	account, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return Balance{}, errors.Wrapf(ledgerError(err), "loading account %s", address)
	}

	bal := Balance{Address: address, Native: "0", LoadedAt: time.Now()}
	for _, b := range account.Balances {
		if b.Asset.Type == "native" {
			bal.Native = b.Balance
			continue
		}
		bal.Assets = append(bal.Assets, Asset{Code: b.Asset.Code, Issuer: b.Asset.Issuer, Balance: b.Balance})
	}
	return bal, nil
}

// SendPayment builds a native payment from p.From, has it signed and submits it.
func (c *Client) SendPayment(ctx context.Context, p PaymentParams) (PaymentResult, error) {
	if c.signer == nil {
		return PaymentResult{}, errors.New("no signer configured")
	}
	if err := ctx.Err(); err != nil {
		return PaymentResult{}, err
	}

	account, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: p.From})
	if err != nil {
		return PaymentResult{}, errors.Wrap(ledgerError(err), "loading source account")
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Timebounds:           txnbuild.NewTimeout(txTimeout),
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: p.To,
				Amount:      p.Amount,
				Asset:       txnbuild.NativeAsset{},
			},
		},
	}
	if p.Memo != "" {
		params.Memo = txnbuild.MemoText(p.Memo)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "building transaction")
	}

	signed, err := c.signer.Sign(ctx, tx, c.passphrase)
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "signing transaction")
	}

	c.debug("submitting payment", "to", p.To, "amount", p.Amount)
	resp, err := c.horizon.SubmitTransaction(signed)
	if err != nil {
		return PaymentResult{}, ledgerError(err)
	}
	return PaymentResult{Hash: resp.Hash, Succeeded: resp.Successful}, nil
}

// GetRecentTransactions returns up to limit payment-like operations touching
// address, newest first.
func (c *Client) GetRecentTransactions(ctx context.Context, address string, limit int) ([]TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	page, err := c.horizon.Payments(horizonclient.OperationRequest{
		ForAccount: address,
		Order:      horizonclient.OrderDesc,
		Limit:      uint(limit),
	})
	if err != nil {
		return nil, errors.Wrapf(ledgerError(err), "loading payments for %s", address)
	}

	records := make([]TransactionRecord, 0, len(page.Embedded.Records))
	for _, op := range page.Embedded.Records {
		records = append(records, toRecord(op))
	}
	return records, nil
}

func toRecord(op operations.Operation) TransactionRecord {
	switch o := op.(type) {
	case operations.Payment:
		code := o.Asset.Code
		if o.Asset.Type == "native" {
			code = "XLM"
		}
		return TransactionRecord{
			ID:        o.Base.ID,
			Kind:      o.Base.Type,
			Amount:    o.Amount,
			AssetCode: code,
			From:      o.From,
			To:        o.To,
			Timestamp: o.Base.LedgerCloseTime,
			Hash:      o.Base.TransactionHash,
		}
	case operations.CreateAccount:
		return TransactionRecord{
			ID:        o.Base.ID,
			Kind:      o.Base.Type,
			Amount:    o.StartingBalance,
			AssetCode: "XLM",
			From:      o.Funder,
			To:        o.Account,
			Timestamp: o.Base.LedgerCloseTime,
			Hash:      o.Base.TransactionHash,
		}
	default:
		return TransactionRecord{
			ID:   op.GetID(),
			Kind: op.GetType(),
			Hash: op.GetTransactionHash(),
		}
	}
}

// ExplorerLink points at the explorer page for a transaction hash or account.
func (c *Client) ExplorerLink(id string, kind LinkKind) string {
	if kind == "" {
		kind = LinkTx
	}
	return fmt.Sprintf("%s/%s/%s/%s", explorerBaseURL, c.network, kind, id)
}

// Fund asks friendbot to create and fund address. Testnet only.
func (c *Client) Fund(ctx context.Context, address string) (string, error) {
	if c.network != Testnet {
		return "", errors.Errorf("friendbot is only available on %s", Testnet)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// friendbot is shared by every testnet Horizon, and only the default
	// testnet client is allowed to call it.
	tx, err := horizonclient.DefaultTestNetClient.Fund(address)
	if err != nil {
		return "", errors.Wrap(ledgerError(err), "funding account")
	}
	return tx.Hash, nil
}

func (c *Client) debug(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, keyvals...)
	}
}

// ledgerError turns a Horizon problem response into a *LedgerError and
// leaves every other error untouched.
func ledgerError(err error) error {
	var herr *horizonclient.Error
	if !errors.As(err, &herr) || herr == nil {
		return err
	}

	le := &LedgerError{
		Status: herr.Problem.Status,
		Title:  herr.Problem.Title,
		Detail: herr.Problem.Detail,
	}
	if codes, cerr := herr.ResultCodes(); cerr == nil && codes != nil {
		le.TransactionCode = codes.TransactionCode
		le.OperationCodes = codes.OperationCodes
	}
	return le
}
