package access

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// memoryStore implements Store with the same transactional contract as the
// Postgres store: the callback runs under an exclusive per-store lock.
type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User        // keyed by telegram id
	grants map[int64]map[int64]struct{} // user id -> figure ids
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[int64]*User),
		grants: make(map[int64]map[int64]struct{}),
	}
}

func (m *memoryStore) ensureLocked(telegramID int64, username string) *User {
	u, ok := m.users[telegramID]
	if !ok {
		m.nextID++
		u = &User{ID: m.nextID, TelegramID: telegramID}
		m.users[telegramID] = u
		m.grants[u.ID] = make(map[int64]struct{})
	}
	if username != "" {
		u.Username = username
	}
	return u
}

func (m *memoryStore) GetOrCreateUser(_ context.Context, telegramID int64, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.ensureLocked(telegramID, username), nil
}

func (m *memoryStore) WithUserLock(_ context.Context, telegramID int64, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.ensureLocked(telegramID, "")
	snapshot := *u
	tx := &memoryTx{store: m, user: snapshot}
	if err := fn(tx); err != nil {
		return err
	}
	// commit
	for _, fid := range tx.added {
		m.grants[u.ID][fid] = struct{}{}
	}
	if tx.counterSet {
		u.FreeFiguresOpened = tx.counter
	}
	return nil
}

func (m *memoryStore) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{Users: int64(len(m.users))}
	for _, u := range m.users {
		if u.Subscribed {
			st.Subscribers++
		}
		st.Grants += int64(len(m.grants[u.ID]))
	}
	return st, nil
}

func (m *memoryStore) subscribe(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(telegramID, "").Subscribed = true
}

func (m *memoryStore) grantCount(telegramID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return 0
	}
	return len(m.grants[u.ID])
}

type memoryTx struct {
	store      *memoryStore
	user       User
	added      []int64
	counter    int
	counterSet bool
}

func (t *memoryTx) User() User { return t.user }

func (t *memoryTx) HasGrant(figureID int64) (bool, error) {
	_, ok := t.store.grants[t.user.ID][figureID]
	return ok, nil
}

func (t *memoryTx) GrantCount() (int, error) {
	return len(t.store.grants[t.user.ID]) + len(t.added), nil
}

func (t *memoryTx) AddGrant(figureID int64) error {
	t.added = append(t.added, figureID)
	return nil
}

func (t *memoryTx) SetFreeFiguresOpened(n int) error {
	t.counter = n
	t.counterSet = true
	return nil
}

func TestGetOrCreateUserFirstContact(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	u, err := svc.GetOrCreateUser(ctx, 100, "dancer")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if u.Subscribed || u.FreeFiguresOpened != 0 {
		t.Fatalf("fresh user should have zeroed state: %+v", u)
	}

	again, err := svc.GetOrCreateUser(ctx, 100, "")
	if err != nil {
		t.Fatalf("second contact: %v", err)
	}
	if again.ID != u.ID {
		t.Fatalf("same identity produced different rows: %d vs %d", again.ID, u.ID)
	}
	if again.Username != "dancer" {
		t.Fatalf("empty username must not overwrite existing, got %q", again.Username)
	}
}

func TestCheckAndRegisterAccessIdempotentGrant(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	first, err := svc.CheckAndRegisterAccess(ctx, 1, 42)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if !first.Allowed || first.Count == nil || *first.Count != 1 {
		t.Fatalf("first open should charge one slot: %+v", first)
	}

	second, err := svc.CheckAndRegisterAccess(ctx, 1, 42)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if !second.Allowed || second.Count != nil {
		t.Fatalf("reopen must be free and unmetered: %+v", second)
	}
	if n := store.grantCount(1); n != 1 {
		t.Fatalf("expected exactly 1 grant after two opens, got %d", n)
	}
}

func TestCheckAndRegisterAccessSubscriberBypass(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	store.subscribe(7)
	for fid := int64(1); fid <= 20; fid++ {
		d, err := svc.CheckAndRegisterAccess(ctx, 7, fid)
		if err != nil {
			t.Fatalf("figure %d: %v", fid, err)
		}
		if !d.Allowed || d.Count != nil {
			t.Fatalf("subscriber must always pass unmetered: %+v", d)
		}
	}
	if n := store.grantCount(7); n != 0 {
		t.Fatalf("subscriber must never receive grant rows, got %d", n)
	}
}

func TestCheckAndRegisterAccessQuotaLimit(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	for fid := int64(1); fid <= 5; fid++ {
		d, err := svc.CheckAndRegisterAccess(ctx, 2, fid)
		if err != nil {
			t.Fatalf("figure %d: %v", fid, err)
		}
		if !d.Allowed {
			t.Fatalf("figure %d should be within quota", fid)
		}
		if d.Count == nil || *d.Count != int(fid) {
			t.Fatalf("figure %d: unexpected count %+v", fid, d.Count)
		}
	}

	sixth, err := svc.CheckAndRegisterAccess(ctx, 2, 6)
	if err != nil {
		t.Fatalf("sixth figure: %v", err)
	}
	if sixth.Allowed {
		t.Fatal("sixth distinct figure must be denied")
	}
	if sixth.Count == nil || *sixth.Count != 5 {
		t.Fatalf("denial should report the consumed quota: %+v", sixth.Count)
	}
	if n := store.grantCount(2); n != 5 {
		t.Fatalf("denied open must not create a grant, got %d", n)
	}

	// Reopening any of the first five stays free.
	for fid := int64(1); fid <= 5; fid++ {
		d, err := svc.CheckAndRegisterAccess(ctx, 2, fid)
		if err != nil {
			t.Fatalf("reopen %d: %v", fid, err)
		}
		if !d.Allowed || d.Count != nil {
			t.Fatalf("reopen %d must be free: %+v", fid, d)
		}
	}
	if n := store.grantCount(2); n != 5 {
		t.Fatalf("reopens must not add grants, got %d", n)
	}
}

func TestCheckAndRegisterAccessConcurrentDistinctFigures(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	// Warm the user to 4 of 5 slots.
	for fid := int64(1); fid <= 4; fid++ {
		if _, err := svc.CheckAndRegisterAccess(ctx, 3, fid); err != nil {
			t.Fatalf("warmup %d: %v", fid, err)
		}
	}

	// Race two different figures for the last slot; exactly one may win.
	var wg sync.WaitGroup
	results := make([]Decision, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := svc.CheckAndRegisterAccess(ctx, 3, int64(100+i))
			if err != nil {
				t.Errorf("racer %d: %v", i, err)
				return
			}
			results[i] = d
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, d := range results {
		if d.Allowed {
			allowed++
		}
	}
	if allowed != 1 {
		t.Fatalf("exactly one racer may take the last slot, got %d", allowed)
	}
	if n := store.grantCount(3); n != 5 {
		t.Fatalf("grants must stop at the limit, got %d", n)
	}
}

func TestStats(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, 5)
	ctx := context.Background()

	store.subscribe(1)
	if _, err := svc.CheckAndRegisterAccess(ctx, 2, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CheckAndRegisterAccess(ctx, 2, 11); err != nil {
		t.Fatal(err)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{Users: 2, Subscribers: 1, Grants: 2}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
}

func TestNewServiceDefaultLimit(t *testing.T) {
	svc := NewService(newMemoryStore(), 0)
	if svc.QuotaLimit() != DefaultQuotaLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultQuotaLimit, svc.QuotaLimit())
	}
}

var _ Store = (*memoryStore)(nil)

// Keeps the fake honest about error propagation.
func TestWithUserLockPropagatesError(t *testing.T) {
	store := newMemoryStore()
	sentinel := fmt.Errorf("boom")
	err := store.WithUserLock(context.Background(), 9, func(Tx) error { return sentinel })
	if err != sentinel {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if n := store.grantCount(9); n != 0 {
		t.Fatalf("failed unit must roll back, got %d grants", n)
	}
}
