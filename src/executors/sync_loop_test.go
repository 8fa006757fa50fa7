package executors

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"journalapi/src/analysis"
	"journalapi/src/connectors"
	"journalapi/src/model"
	"journalapi/src/security"
)

type fakeBridge struct {
	pages   [][]connectors.MT5Deal
	err     error
	fetches int
}

func (f *fakeBridge) FetchDeals(_ context.Context, _ connectors.MT5Credentials, _ int64) ([]connectors.MT5Deal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.fetches >= len(f.pages) {
		return nil, nil
	}
	page := f.pages[f.fetches]
	f.fetches++
	return page, nil
}

type fakeAccountStore struct {
	accounts   []model.MT5Account
	listErr    error
	updatedID  uint
	lastTicket int64
	updates    int
}

func (f *fakeAccountStore) ListSyncEnabled(_ context.Context) ([]model.MT5Account, error) {
	return f.accounts, f.listErr
}

func (f *fakeAccountStore) UpdateSyncState(_ context.Context, accountID uint, lastTicket int64, _ time.Time) error {
	f.updates++
	f.updatedID = accountID
	f.lastTicket = lastTicket
	return nil
}

type fakeTradeStore struct {
	upserts []model.Trade
	err     error
}

func (f *fakeTradeStore) UpsertByBrokerTicket(_ context.Context, trade *model.Trade) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.upserts = append(f.upserts, *trade)
	return true, nil
}

type fakeExceptionWriter struct {
	captured []*model.Exception
}

func (f *fakeExceptionWriter) Create(_ context.Context, exc *model.Exception) error {
	f.captured = append(f.captured, exc)
	return nil
}

func encryptedPassword(t *testing.T) string {
	t.Helper()
	t.Setenv("BROKER_CREDENTIALS_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32)))

	enc, err := security.EncryptString("investor-pass")
	if err != nil {
		t.Fatalf("failed to encrypt test password: %v", err)
	}
	return enc
}

func TestSyncTickReconcilesDeals(t *testing.T) {
	password := encryptedPassword(t)

	bridge := &fakeBridge{pages: [][]connectors.MT5Deal{
		{
			{Ticket: 1001, Symbol: "EURUSD", Type: "buy", Volume: "0.10", EntryPrice: "1.08", Profit: "5.00", OpenedAt: "2025-05-01T09:00:00Z", ClosedAt: "2025-05-01T10:00:00Z"},
			{Ticket: 1002, Symbol: "GBPJPY", Type: "sell", Volume: "0.20", EntryPrice: "191.40", Profit: "-3.00", OpenedAt: "2025-05-01T11:00:00Z", ClosedAt: "2025-05-01T12:00:00Z"},
		},
	}}
	accounts := &fakeAccountStore{accounts: []model.MT5Account{
		{ID: 1, UserID: 7, Server: "Broker-Demo", Login: "12345", PasswordHash: password, LastTicket: 1000},
	}}
	trades := &fakeTradeStore{}
	exceptions := &fakeExceptionWriter{}

	SyncTick(context.Background(), bridge, accounts, trades, exceptions)

	if len(trades.upserts) != 2 {
		t.Fatalf("expected 2 reconciled trades, got %d", len(trades.upserts))
	}
	if trades.upserts[0].UserID != 7 || trades.upserts[0].Source != model.TradeSourceMT5 {
		t.Fatalf("unexpected reconciled trade: %+v", trades.upserts[0])
	}

	if accounts.updates != 1 || accounts.updatedID != 1 || accounts.lastTicket != 1002 {
		t.Fatalf("sync state not advanced to 1002: %+v", accounts)
	}

	if len(exceptions.captured) != 0 {
		t.Fatalf("no exceptions expected, got %d", len(exceptions.captured))
	}
}

func TestSyncTickSkipsUnmappableDeals(t *testing.T) {
	password := encryptedPassword(t)

	bridge := &fakeBridge{pages: [][]connectors.MT5Deal{
		{
			{Ticket: 2001, Symbol: "EURUSD", Type: "hold", Volume: "0.10", EntryPrice: "1.08", Profit: "0", OpenedAt: "2025-05-01T09:00:00Z"},
			{Ticket: 2002, Symbol: "EURUSD", Type: "buy", Volume: "0.10", EntryPrice: "1.08", Profit: "0", OpenedAt: "2025-05-01T09:30:00Z"},
		},
	}}
	accounts := &fakeAccountStore{accounts: []model.MT5Account{
		{ID: 1, UserID: 7, Server: "Broker-Demo", Login: "12345", PasswordHash: password},
	}}
	trades := &fakeTradeStore{}

	SyncTick(context.Background(), bridge, accounts, trades, &fakeExceptionWriter{})

	if len(trades.upserts) != 1 || *trades.upserts[0].BrokerTicket != 2002 {
		t.Fatalf("expected only the mappable deal reconciled: %+v", trades.upserts)
	}
	// the skipped deal still advances the cursor so it is not refetched
	if accounts.lastTicket != 2002 {
		t.Fatalf("expected cursor at 2002, got %d", accounts.lastTicket)
	}
}

// stuckBridge always returns the same page, like a bridge that ignores
// the since_ticket parameter.
type stuckBridge struct {
	page    []connectors.MT5Deal
	fetches int
}

func (f *stuckBridge) FetchDeals(_ context.Context, _ connectors.MT5Credentials, _ int64) ([]connectors.MT5Deal, error) {
	f.fetches++
	return f.page, nil
}

func TestSyncTickStopsOnStalePage(t *testing.T) {
	password := encryptedPassword(t)

	bridge := &stuckBridge{page: []connectors.MT5Deal{
		{Ticket: 900, Symbol: "EURUSD", Type: "buy", Volume: "0.10", EntryPrice: "1.08", Profit: "0", OpenedAt: "2025-05-01T09:00:00Z"},
	}}
	accounts := &fakeAccountStore{accounts: []model.MT5Account{
		{ID: 1, UserID: 7, Server: "Broker-Demo", Login: "12345", PasswordHash: password, LastTicket: 1000},
	}}
	exceptions := &fakeExceptionWriter{}

	SyncTick(context.Background(), bridge, accounts, &fakeTradeStore{}, exceptions)

	if bridge.fetches != 1 {
		t.Fatalf("a page without new tickets must end the pass, got %d fetches", bridge.fetches)
	}
	if accounts.updates != 0 {
		t.Fatalf("sync state must not change when the cursor did not move, got %d updates", accounts.updates)
	}
}

func TestSyncTickCapturesAccountFailures(t *testing.T) {
	password := encryptedPassword(t)

	bridge := &fakeBridge{err: assert.AnError}
	accounts := &fakeAccountStore{accounts: []model.MT5Account{
		{ID: 1, UserID: 7, Server: "Broker-Demo", Login: "12345", PasswordHash: password},
	}}
	exceptions := &fakeExceptionWriter{}

	SyncTick(context.Background(), bridge, accounts, &fakeTradeStore{}, exceptions)

	if len(exceptions.captured) != 1 {
		t.Fatalf("expected 1 captured exception, got %d", len(exceptions.captured))
	}
	if exceptions.captured[0].Service != "mt5sync" {
		t.Fatalf("unexpected exception service: %q", exceptions.captured[0].Service)
	}
}

type fakePatternRunner struct {
	errs map[uint]error
	runs []uint
}

func (f *fakePatternRunner) RunPatternAnalysis(_ context.Context, userID uint) ([]*model.TradePattern, error) {
	f.runs = append(f.runs, userID)
	if err, ok := f.errs[userID]; ok {
		return nil, err
	}
	return []*model.TradePattern{{UserID: userID}}, nil
}

func TestAnalysisTickSkipsInsufficientData(t *testing.T) {
	accounts := &fakeAccountStore{accounts: []model.MT5Account{
		{ID: 1, UserID: 7},
		{ID: 2, UserID: 8},
		{ID: 3, UserID: 9},
	}}
	runner := &fakePatternRunner{errs: map[uint]error{
		8: &analysis.InsufficientDataError{Got: 1, Required: 5},
		9: assert.AnError,
	}}
	exceptions := &fakeExceptionWriter{}

	AnalysisTick(context.Background(), runner, accounts, exceptions)

	if len(runner.runs) != 3 {
		t.Fatalf("every user must be attempted, got runs for %v", runner.runs)
	}

	// insufficient data is a skip, only the hard failure is captured
	if len(exceptions.captured) != 1 {
		t.Fatalf("expected 1 captured exception, got %d", len(exceptions.captured))
	}
	if exceptions.captured[0].Service != "analyzer" {
		t.Fatalf("unexpected exception service: %q", exceptions.captured[0].Service)
	}
}
