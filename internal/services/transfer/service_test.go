package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory LedgerRepository with real per-account mutexes
// behind GetAccountForUpdate and commit-time visibility for writes. A lock
// ordering bug in the service would deadlock the concurrency tests here the
// same way it would deadlock against Postgres.
type fakeLedger struct {
	mu           sync.Mutex
	accounts     map[uint]*models.Account
	transactions []*models.Transaction
	byKey        map[string]*models.Transaction
	locks        map[uint]*sync.Mutex
	nextTxnID    uint

	uowCount   int
	failCreate bool
	lockErr    error
}

func newFakeLedger(accounts ...*models.Account) *fakeLedger {
	l := &fakeLedger{
		accounts: make(map[uint]*models.Account),
		byKey:    make(map[string]*models.Transaction),
		locks:    make(map[uint]*sync.Mutex),
	}
	for _, a := range accounts {
		copied := *a
		l.accounts[a.ID] = &copied
		l.locks[a.ID] = &sync.Mutex{}
	}
	return l
}

func (l *fakeLedger) GetAccount(_ context.Context, id uint) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (l *fakeLedger) GetTransaction(_ context.Context, id uint) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, txn := range l.transactions {
		if txn.ID == id {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (l *fakeLedger) GetTransactionByIdempotencyKey(_ context.Context, key string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if txn, ok := l.byKey[key]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, repositories.ErrTransactionNotFound
}

func (l *fakeLedger) CreateAccount(_ context.Context, account *models.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	account.ID = uint(len(l.accounts) + 1)
	copied := *account
	l.accounts[account.ID] = &copied
	l.locks[account.ID] = &sync.Mutex{}
	return nil
}

func (l *fakeLedger) ExecuteInTransaction(_ context.Context, fn func(tx repositories.LedgerTx) error) error {
	l.mu.Lock()
	l.uowCount++
	l.mu.Unlock()

	tx := &fakeLedgerTx{ledger: l, staged: make(map[uint]models.Account)}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}

	// Commit: all staged writes become visible together.
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, account := range tx.staged {
		copied := account
		l.accounts[id] = &copied
	}
	for _, txn := range tx.stagedTxns {
		l.transactions = append(l.transactions, txn)
		if txn.IdempotencyKey != nil {
			l.byKey[*txn.IdempotencyKey] = txn
		}
	}
	return nil
}

func (l *fakeLedger) transactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transactions)
}

func (l *fakeLedger) balance(id uint) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id].Balance
}

type fakeLedgerTx struct {
	ledger     *fakeLedger
	held       []uint
	staged     map[uint]models.Account
	stagedTxns []*models.Transaction
}

func (t *fakeLedgerTx) GetAccountForUpdate(_ context.Context, id uint) (*models.Account, error) {
	if t.ledger.lockErr != nil {
		return nil, t.ledger.lockErr
	}

	t.ledger.mu.Lock()
	lock, ok := t.ledger.locks[id]
	t.ledger.mu.Unlock()
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}

	lock.Lock()
	t.held = append(t.held, id)

	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	copied := *t.ledger.accounts[id]
	return &copied, nil
}

func (t *fakeLedgerTx) SaveAccount(_ context.Context, account *models.Account) error {
	t.staged[account.ID] = *account
	return nil
}

func (t *fakeLedgerTx) CreateTransaction(_ context.Context, transaction *models.Transaction) error {
	if t.ledger.failCreate {
		return errors.New("insert failed")
	}
	t.ledger.mu.Lock()
	t.ledger.nextTxnID++
	transaction.ID = t.ledger.nextTxnID
	t.ledger.mu.Unlock()
	copied := *transaction
	t.stagedTxns = append(t.stagedTxns, &copied)
	return nil
}

func (t *fakeLedgerTx) releaseLocks() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.ledger.mu.Lock()
		lock := t.ledger.locks[t.held[i]]
		t.ledger.mu.Unlock()
		lock.Unlock()
	}
	t.held = nil
}

type capturingOutbox struct {
	mu        sync.Mutex
	completed []CompletedTransfer
}

func (o *capturingOutbox) TransferCompleted(_ context.Context, completed CompletedTransfer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, completed)
}

func (o *capturingOutbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.completed)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usdAccount(id, userID uint, balance string) *models.Account {
	return &models.Account{ID: id, UserID: userID, Balance: money(balance), Currency: "USD"}
}

func TestTransfer_Success(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "500.00"),
		&models.Account{ID: 2, UserID: 20, Balance: money("100.00"), Currency: "EUR"},
	)
	outbox := &capturingOutbox{}
	// Identity reconciliation: the EUR side is credited the USD amount
	// unchanged, matching the fixed-factor default.
	svc := NewService(ledger, NewReconciler(decimal.NewFromInt(1)), outbox, nil)

	txn, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("100.00"),
	})
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.True(t, txn.Amount.Equal(money("100.00")))
	assert.NotEmpty(t, txn.Reference)
	assert.True(t, ledger.balance(1).Equal(money("400.00")), "sender balance %s", ledger.balance(1))
	assert.True(t, ledger.balance(2).Equal(money("200.00")), "receiver balance %s", ledger.balance(2))
	assert.Equal(t, 1, ledger.transactionCount())

	require.Equal(t, 1, outbox.count())
	completed := outbox.completed[0]
	assert.Equal(t, uint(20), completed.ReceiverUserID)
	assert.True(t, completed.OldSenderBalance.Equal(money("500.00")))
	assert.True(t, completed.NewSenderBalance.Equal(money("400.00")))
	assert.True(t, completed.OldReceiverBalance.Equal(money("100.00")))
	assert.True(t, completed.NewReceiverBalance.Equal(money("200.00")))
	assert.Equal(t, "Amount converted from USD to EUR", completed.ConversionNote)
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "500.00"),
		&models.Account{ID: 2, UserID: 20, Balance: money("100.00"), Currency: "EUR"},
	)
	svc := NewService(ledger, nil, nil, nil)

	_, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("600.00"),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.True(t, ledger.balance(1).Equal(money("500.00")))
	assert.True(t, ledger.balance(2).Equal(money("100.00")))
	assert.Equal(t, 0, ledger.transactionCount())
}

func TestTransfer_SelfTransferTouchesNoStorage(t *testing.T) {
	ledger := newFakeLedger(usdAccount(1, 10, "500.00"))
	svc := NewService(ledger, nil, nil, nil)

	_, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 1,
		Amount:            money("10.00"),
	})
	assert.ErrorIs(t, err, ErrSelfTransfer)
	assert.Equal(t, 0, ledger.uowCount)
	assert.Equal(t, 0, ledger.transactionCount())
}

func TestTransfer_AccountNotFound(t *testing.T) {
	ledger := newFakeLedger(usdAccount(1, 10, "500.00"))
	svc := NewService(ledger, nil, nil, nil)

	_, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 99,
		Amount:            money("10.00"),
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, 0, ledger.uowCount, "no unit-of-work before both accounts exist")

	_, err = svc.Transfer(context.Background(), Request{
		SenderAccountID:   98,
		ReceiverAccountID: 1,
		Amount:            money("10.00"),
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTransfer_AtomicityOnInsertFailure(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "500.00"),
		usdAccount(2, 20, "100.00"),
	)
	ledger.failCreate = true
	outbox := &capturingOutbox{}
	svc := NewService(ledger, nil, outbox, nil)

	_, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("100.00"),
	})
	require.Error(t, err)

	// The aborted unit-of-work leaves no durable trace.
	assert.True(t, ledger.balance(1).Equal(money("500.00")))
	assert.True(t, ledger.balance(2).Equal(money("100.00")))
	assert.Equal(t, 0, ledger.transactionCount())
	assert.Equal(t, 0, outbox.count())
}

func TestTransfer_LockTimeout(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "500.00"),
		usdAccount(2, 20, "100.00"),
	)
	ledger.lockErr = repositories.ErrLockTimeout
	svc := NewService(ledger, nil, nil, nil)

	_, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("10.00"),
	})
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 0, ledger.transactionCount())
}

func TestTransfer_IdempotentReplay(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "500.00"),
		usdAccount(2, 20, "100.00"),
	)
	svc := NewService(ledger, nil, nil, nil)

	req := Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("50.00"),
		IdempotencyKey:    "a2f1b9ce-5a6d-4e0f-9b1c-0d8e7f6a5b4c",
	}

	first, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, ledger.transactionCount())
	assert.True(t, ledger.balance(1).Equal(money("450.00")), "replay must not debit twice")
}

func TestTransfer_CurrencyConversionCreditsAdjustedAmount(t *testing.T) {
	ledger := newFakeLedger(
		&models.Account{ID: 1, UserID: 10, Balance: money("500.00"), Currency: "USD"},
		&models.Account{ID: 2, UserID: 20, Balance: money("100.00"), Currency: "EUR"},
	)
	svc := NewService(ledger, NewReconciler(decimal.NewFromFloat(1.1)), nil, nil)

	txn, err := svc.Transfer(context.Background(), Request{
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            money("100.00"),
	})
	require.NoError(t, err)

	// Sender is debited exactly what was requested; the receiver absorbs
	// the conversion delta.
	assert.True(t, txn.Amount.Equal(money("100.00")))
	assert.True(t, ledger.balance(1).Equal(money("400.00")), "sender balance %s", ledger.balance(1))
	assert.True(t, ledger.balance(2).Equal(money("210.00")), "receiver balance %s", ledger.balance(2))
}

func TestTransfer_ConcurrentOppositeDirections(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "10000.00"),
		usdAccount(2, 20, "10000.00"),
	)
	svc := NewService(ledger, nil, nil, nil)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2 * rounds)
	for i := 0; i < rounds; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), Request{
				SenderAccountID: 1, ReceiverAccountID: 2, Amount: money("3.00"),
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), Request{
				SenderAccountID: 2, ReceiverAccountID: 1, Amount: money("7.00"),
			})
			assert.NoError(t, err)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("concurrent transfers deadlocked")
	}

	// Conservation: money moved but none created or destroyed.
	total := ledger.balance(1).Add(ledger.balance(2))
	assert.True(t, total.Equal(money("20000.00")), "total %s", total)
	assert.True(t, ledger.balance(1).Equal(money("10200.00")), "account 1 %s", ledger.balance(1))
	assert.True(t, ledger.balance(2).Equal(money("9800.00")), "account 2 %s", ledger.balance(2))
	assert.Equal(t, 2*rounds, ledger.transactionCount())
}

func TestTransfer_ConcurrentSharedSenderNeverOverdraws(t *testing.T) {
	ledger := newFakeLedger(
		usdAccount(1, 10, "100.00"),
		usdAccount(2, 20, "0.00"),
		usdAccount(3, 30, "0.00"),
	)
	svc := NewService(ledger, nil, nil, nil)

	// 40 transfers of 10.00 against a 100.00 balance: exactly 10 can
	// succeed, the rest must fail cleanly.
	const attempts = 40
	var wg sync.WaitGroup
	var successes, rejections int64
	var mu sync.Mutex
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		receiver := uint(2 + i%2)
		go func(receiver uint) {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), Request{
				SenderAccountID: 1, ReceiverAccountID: receiver, Amount: money("10.00"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInsufficientBalance):
				rejections++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(receiver)
	}
	wg.Wait()

	assert.EqualValues(t, 10, successes)
	assert.EqualValues(t, attempts-10, rejections)
	assert.True(t, ledger.balance(1).Equal(money("0.00")), "sender %s", ledger.balance(1))
	assert.False(t, ledger.balance(1).IsNegative(), "balance must never go negative")

	received := ledger.balance(2).Add(ledger.balance(3))
	assert.True(t, received.Equal(money("100.00")), "received %s", received)
}
