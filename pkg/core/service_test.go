package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// MockRepository implements core.Repository in memory and counts persists.
type MockRepository struct {
	snap       core.Snapshot
	persists   int
	persistErr error
	loadErr    error
	// persistDelay widens the window between reading and writing a record.
	persistDelay time.Duration
}

func NewMockRepository(clients ...core.ClientEngagement) *MockRepository {
	return &MockRepository{snap: core.Snapshot{Clients: clients}}
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

func (m *MockRepository) Load(ctx context.Context) (core.Snapshot, error) {
	if m.loadErr != nil {
		return core.Snapshot{}, m.loadErr
	}
	return m.snap.Clone(), nil
}

func (m *MockRepository) Persist(ctx context.Context, snap core.Snapshot) error {
	if m.persistErr != nil {
		return m.persistErr
	}
	time.Sleep(m.persistDelay)
	m.persists++
	m.snap = snap.Clone()
	return nil
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("n%d", n.Add(1))
	}
}

func newTestService(t *testing.T, repo *MockRepository, opts ...core.ServiceOption) *core.Service {
	t.Helper()
	store := core.NewStore(repo)
	require.NoError(t, store.Load(context.Background()))
	base := []core.ServiceOption{
		core.WithClock(func() time.Time { return fixedNow }),
		core.WithIDGenerator(sequentialIDs()),
	}
	return core.NewService(store, append(base, opts...)...)
}

func acme() core.ClientEngagement {
	return core.ClientEngagement{
		ID:            "c1",
		Email:         "jane@acme.test",
		Name:          "Jane Doe",
		CompanyName:   "Acme SARL",
		Progress:      50,
		StatusMessage: "Drafting statutes",
		Timeline: []core.TimelineStep{
			{ID: "t1", Label: "Kickoff", Status: core.StepCompleted},
			{ID: "t2", Label: "Drafting statutes", Status: core.StepInProgress},
			{ID: "t3", Label: "Registration", Status: core.StepPending},
		},
		Documents: []core.ClientDocument{
			{ID: "d1", Name: "ID card", Type: "pdf", Status: core.DocumentUploaded},
			{ID: "d2", Name: "Lease", Type: "pdf", Status: core.DocumentRejected, RejectionReason: "Blurry scan."},
		},
		ContractValue:    1000,
		AmountPaid:       600,
		Currency:         "MAD",
		PaymentStatus:    core.PaymentPartial,
		MissionStartDate: "2024-01-15",
	}
}

func TestService_Queries(t *testing.T) {
	other := acme()
	other.ID = "c2"
	other.Email = "Bob@Globex.test"
	other.CompanyName = "Globex"
	svc := newTestService(t, NewMockRepository(acme(), other))

	t.Run("Get", func(t *testing.T) {
		c, err := svc.Get("c1")
		require.NoError(t, err)
		assert.Equal(t, "Acme SARL", c.CompanyName)

		_, err = svc.Get("missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
		var nf *core.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.ID)
	})

	t.Run("List keeps order", func(t *testing.T) {
		list := svc.List()
		require.Len(t, list, 2)
		assert.Equal(t, "c1", list[0].ID)
		assert.Equal(t, "c2", list[1].ID)
	})

	t.Run("FindByEmail ignores case", func(t *testing.T) {
		c, err := svc.FindByEmail("  bob@globex.TEST ")
		require.NoError(t, err)
		assert.Equal(t, "c2", c.ID)
	})

	t.Run("FindClients", func(t *testing.T) {
		got, err := svc.FindClients("*@acme.*")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c1", got[0].ID)

		got, err = svc.FindClients("GLOB*")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c2", got[0].ID)

		_, err = svc.FindClients("[")
		assert.Error(t, err)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		c, err := svc.Get("c1")
		require.NoError(t, err)
		c.Timeline[0].Label = "mutated"
		again, _ := svc.Get("c1")
		assert.Equal(t, "Kickoff", again.Timeline[0].Label)
	})
}

func TestService_Onboard(t *testing.T) {
	repo := NewMockRepository(acme())
	svc := newTestService(t, repo)
	ctx := context.Background()

	c, err := svc.Onboard(ctx, core.ClientEngagement{
		Email:       "new@initech.test",
		CompanyName: "Initech",
		Timeline: []core.TimelineStep{
			{ID: "a", Label: "Audit", Status: core.StepPending},
			{ID: "b", Label: "Report", Status: core.StepPending},
		},
		Documents:     []core.ClientDocument{{ID: "x", Name: "Kbis", Status: core.DocumentRejected}},
		ContractValue: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "n1", c.ID)
	assert.Equal(t, 0, c.Progress)
	assert.Equal(t, "Pending: Audit", c.StatusMessage)
	assert.Equal(t, core.PaymentPending, c.PaymentStatus)
	assert.Equal(t, core.DefaultRejectionReason, c.Documents[0].RejectionReason)
	assert.Equal(t, 0, c.Notifications.Len())
	assert.Equal(t, 1, repo.persists)
	require.Len(t, repo.snap.Clients, 2)
	assert.Equal(t, "c1", repo.snap.Clients[0].ID)

	_, err = svc.Onboard(ctx, core.ClientEngagement{Email: "JANE@acme.test"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	_, err = svc.Onboard(ctx, core.ClientEngagement{Email: "neg@x.test", ContractValue: -1})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, 1, repo.persists)
}

func TestStore_PersistFailureLeavesStateUnchanged(t *testing.T) {
	repo := NewMockRepository(acme())
	svc := newTestService(t, repo)
	repo.persistErr = errors.New("disk full")

	_, err := svc.ApplyUpdate(context.Background(), core.AdminSession(), "c1", core.ClientUpdate{
		StatusMessage: core.Some("Filing"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.persistErr)
	assert.Contains(t, err.Error(), "persist record set")

	c, err := svc.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "Drafting statutes", c.StatusMessage)
	assert.Equal(t, 0, c.Notifications.Len())
}

func TestStore_LoadError(t *testing.T) {
	repo := NewMockRepository()
	repo.loadErr = errors.New("boom")
	err := core.NewStore(repo).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.loadErr)
}

func TestStore_NoopTransactionDoesNotPersist(t *testing.T) {
	repo := NewMockRepository(acme())
	svc := newTestService(t, repo)

	require.NoError(t, svc.MarkRead(context.Background(), core.ClientInbox("c1"), "unknown"))
	assert.Equal(t, 0, repo.persists)
}

func TestService_State(t *testing.T) {
	svc := newTestService(t, NewMockRepository(acme()), core.WithEventBuffer(8))
	st, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 8, st.EventBufferSize)
	assert.Equal(t, 1, st.Store.Clients)
	assert.Equal(t, "service", svc.ComponentType())
}

func TestClientEngagement_Derived(t *testing.T) {
	c := acme()
	assert.Equal(t, 400.0, c.Balance())

	renewal, ok := c.RenewalDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), renewal)

	c.MissionStartDate = "soon"
	_, ok = c.RenewalDate()
	assert.False(t, ok)
}
