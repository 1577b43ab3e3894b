package ledger

import (
	"context"
	"maps"
	"sync"

	"rentflow/pkg/domain"
)

type memoryAccount struct {
	free  domain.Amount
	holds map[string]domain.Amount
}

func (a *memoryAccount) held() domain.Amount {
	var sum domain.Amount
	for _, v := range a.holds {
		sum += v
	}
	return sum
}

// Memory is an in-process ledger guarded by a single mutex.
type Memory struct {
	mu                 sync.Mutex
	existentialDeposit domain.Amount
	accounts           map[domain.AccountID]*memoryAccount
}

func NewMemory(existentialDeposit domain.Amount) *Memory {
	return &Memory{
		existentialDeposit: existentialDeposit,
		accounts:           make(map[domain.AccountID]*memoryAccount),
	}
}

func (m *Memory) Balance(_ context.Context, account domain.AccountID) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[account]; ok {
		return a.free, nil
	}
	return 0, nil
}

func (m *Memory) PlaceHold(_ context.Context, reason string, account domain.AccountID, amount domain.Amount) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[account]
	if !ok {
		return ErrInsufficientBalance
	}
	if _, exists := a.holds[reason]; exists {
		return ErrHoldExists
	}
	if err := checkDebit(a.free, amount, m.existentialDeposit, Expendable); err != nil {
		return err
	}
	a.free -= amount
	a.holds[reason] = amount
	return nil
}

func (m *Memory) ReleaseHold(_ context.Context, reason string, account domain.AccountID) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[account]
	if !ok {
		return 0, ErrHoldNotFound
	}
	amount, ok := a.holds[reason]
	if !ok {
		return 0, ErrHoldNotFound
	}
	delete(a.holds, reason)
	a.free += amount
	return amount, nil
}

func (m *Memory) Transfer(_ context.Context, from, to domain.AccountID, amount domain.Amount, policy Preservation) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.accounts[from]
	if !ok {
		return ErrInsufficientBalance
	}
	if err := checkDebit(src.free, amount, m.existentialDeposit, policy); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	dst := m.accounts[to]
	var dstTotal domain.Amount
	if dst != nil {
		dstTotal = dst.free + dst.held()
	}
	if err := checkCredit(dstTotal, amount, m.existentialDeposit); err != nil {
		return err
	}

	src.free -= amount
	if dst == nil {
		dst = &memoryAccount{holds: make(map[string]domain.Amount)}
		m.accounts[to] = dst
	}
	dst.free += amount
	m.reapIfDust(from, src)
	return nil
}

func (m *Memory) Deposit(_ context.Context, account domain.AccountID, amount domain.Amount) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.accounts[account]
	var total domain.Amount
	if a != nil {
		total = a.free + a.held()
	}
	if err := checkCredit(total, amount, m.existentialDeposit); err != nil {
		return err
	}
	if a == nil {
		a = &memoryAccount{holds: make(map[string]domain.Amount)}
		m.accounts[account] = a
	}
	a.free += amount
	return nil
}

func (m *Memory) Account(_ context.Context, account domain.AccountID) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := Account{ID: account}
	if a, ok := m.accounts[account]; ok {
		view.Free = a.free
		view.Held = a.held()
		view.Holds = maps.Clone(a.holds)
	}
	return view, nil
}

// reapIfDust removes an account whose total fell below the existential
// deposit; the remaining dust is burned.
func (m *Memory) reapIfDust(id domain.AccountID, a *memoryAccount) {
	if len(a.holds) == 0 && (a.free == 0 || a.free < m.existentialDeposit) {
		delete(m.accounts, id)
	}
}
