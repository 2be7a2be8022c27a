package stellar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keySigner struct{ kp *keypair.Full }

func (s keySigner) Sign(_ context.Context, tx *txnbuild.Transaction, passphrase string) (*txnbuild.Transaction, error) {
	return tx.Sign(passphrase, s.kp)
}

// fakeHorizon serves the handful of Horizon endpoints the client touches.
type fakeHorizon struct {
	accounts   map[string]string
	payments   string
	submit     func(w http.ResponseWriter)
	lastQuery  map[string]string
	submitHits int
}

func (f *fakeHorizon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/hal+json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/transactions":
		f.submitHits++
		f.submit(w)
	case len(parts) == 3 && parts[0] == "accounts" && parts[2] == "payments":
		f.lastQuery = map[string]string{
			"order": r.URL.Query().Get("order"),
			"limit": r.URL.Query().Get("limit"),
		}
		fmt.Fprint(w, f.payments)
	case len(parts) == 2 && parts[0] == "accounts":
		if body, ok := f.accounts[parts[1]]; ok {
			fmt.Fprint(w, body)
			return
		}
		notFound(w)
	default:
		notFound(w)
	}
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404,"detail":"not found"}`)
}

func accountJSON(id string, balances ...map[string]string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":         id,
		"account_id": id,
		"sequence":   "4294967296",
		"balances":   balances,
	})
	return string(body)
}

func newTestClient(t *testing.T, h http.Handler, signer Signer) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{Network: Testnet, HorizonURL: srv.URL, Signer: signer})
}

func TestGetBalance(t *testing.T) {
	addr := keypair.MustRandom().Address()
	issuer := keypair.MustRandom().Address()
	fake := &fakeHorizon{accounts: map[string]string{
		addr: accountJSON(addr,
			map[string]string{"balance": "5.0000000", "asset_type": "credit_alphanum4", "asset_code": "USDC", "asset_issuer": issuer},
			map[string]string{"balance": "10000.5000000", "asset_type": "native"},
		),
	}}
	c := newTestClient(t, fake, nil)

	bal, err := c.GetBalance(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, addr, bal.Address)
	assert.Equal(t, "10000.5000000", bal.Native)
	require.Len(t, bal.Assets, 1)
	assert.Equal(t, Asset{Code: "USDC", Issuer: issuer, Balance: "5.0000000"}, bal.Assets[0])
	assert.False(t, bal.LoadedAt.IsZero())

	t.Run("missing account", func(t *testing.T) {
		_, err := c.GetBalance(context.Background(), keypair.MustRandom().Address())
		require.Error(t, err)

		var le *LedgerError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, http.StatusNotFound, le.Status)
		assert.Equal(t, "Resource Missing", le.Title)
	})
}

func TestGetRecentTransactions(t *testing.T) {
	me := keypair.MustRandom().Address()
	other := keypair.MustRandom().Address()
	fake := &fakeHorizon{payments: fmt.Sprintf(`{
  "_embedded": {"records": [
    {"id": "2", "paging_token": "2", "type": "payment", "type_i": 1, "transaction_hash": "hash-2",
     "created_at": "2026-10-15T10:00:00Z", "asset_type": "native", "from": %q, "to": %q, "amount": "12.5000000"},
    {"id": "1", "paging_token": "1", "type": "create_account", "type_i": 0, "transaction_hash": "hash-1",
     "created_at": "2026-10-14T10:00:00Z", "funder": %q, "account": %q, "starting_balance": "10000.0000000"}
  ]}
}`, me, other, other, me)}
	c := newTestClient(t, fake, nil)

	records, err := c.GetRecentTransactions(context.Background(), me, 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"order": "desc", "limit": "5"}, fake.lastQuery)

	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, "payment", records[0].Kind)
	assert.Equal(t, "XLM", records[0].AssetCode)
	assert.Equal(t, me, records[0].From)
	assert.Equal(t, other, records[0].To)
	assert.Equal(t, "hash-2", records[0].Hash)
	assert.Equal(t, 2026, records[0].Timestamp.Year())

	assert.Equal(t, "create_account", records[1].Kind)
	assert.Equal(t, other, records[1].From)
	assert.Equal(t, me, records[1].To)
	assert.Equal(t, "10000.0000000", records[1].Amount)
}

func TestSendPaymentRejected(t *testing.T) {
	kp := keypair.MustRandom()
	dest := keypair.MustRandom().Address()
	fake := &fakeHorizon{
		accounts: map[string]string{
			kp.Address(): accountJSON(kp.Address(), map[string]string{"balance": "1.0000000", "asset_type": "native"}),
		},
		submit: func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"type":"https://stellar.org/horizon-errors/transaction_failed","title":"Transaction Failed","status":400,
"extras":{"result_codes":{"transaction":"tx_failed","operations":["op_underfunded"]}}}`)
		},
	}
	c := newTestClient(t, fake, keySigner{kp: kp})

	_, err := c.SendPayment(context.Background(), PaymentParams{From: kp.Address(), To: dest, Amount: "500", Memo: "sorry"})
	require.Error(t, err)
	assert.Equal(t, 1, fake.submitHits)

	var le *LedgerError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "tx_failed", le.TransactionCode)
	assert.Equal(t, "op_underfunded", le.OperationCode())
	assert.Contains(t, le.Error(), "op_underfunded")
}

func TestSendPaymentMemoOverByteLimit(t *testing.T) {
	kp := keypair.MustRandom()
	fake := &fakeHorizon{
		accounts: map[string]string{
			kp.Address(): accountJSON(kp.Address(), map[string]string{"balance": "100.0000000", "asset_type": "native"}),
		},
	}
	c := newTestClient(t, fake, keySigner{kp: kp})

	memo := strings.Repeat("é", 20)
	_, err := c.SendPayment(context.Background(), PaymentParams{
		From:   kp.Address(),
		To:     keypair.MustRandom().Address(),
		Amount: "1",
		Memo:   memo,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't be longer than 28 bytes")
	assert.Equal(t, 0, fake.submitHits)
}

func TestSendPaymentWithoutSigner(t *testing.T) {
	c := New(Options{})
	_, err := c.SendPayment(context.Background(), PaymentParams{})
	assert.EqualError(t, err, "no signer configured")
}

func TestExplorerLink(t *testing.T) {
	assert.Equal(t, "https://stellar.expert/explorer/testnet/tx/abc123", New(Options{}).ExplorerLink("abc123", LinkTx))
	assert.Equal(t, "https://stellar.expert/explorer/public/account/GABC", New(Options{Network: Public}).ExplorerLink("GABC", LinkAccount))
	assert.Equal(t, "https://stellar.expert/explorer/testnet/tx/h", New(Options{Network: "bogus"}).ExplorerLink("h", ""))
}

func TestLedgerErrorPassThrough(t *testing.T) {
	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, ledgerError(plain))
}

func TestFundRequiresTestnet(t *testing.T) {
	_, err := New(Options{Network: Public}).Fund(context.Background(), "GABC")
	assert.Error(t, err)
}

func TestNewNetwork(t *testing.T) {
	assert.Equal(t, Public, New(Options{Network: Public}).Network())
	assert.Equal(t, Testnet, New(Options{Network: "futurenet"}).Network(), "unknown networks fall back to testnet")
}

func TestGenerateQRCode(t *testing.T) {
	assert.Empty(t, GenerateQRCode(""))
	assert.NotEmpty(t, GenerateQRCode("https://stellar.expert/explorer/testnet/tx/abc123"))
}
