package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/fs"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// setupRepo creates a repository inside a fresh temp dir.
func setupRepo(t *testing.T, name string, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", name)
	cfg := fs.Config{Path: path}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), path
}

func sampleSnapshot() core.Snapshot {
	paid := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	return core.Snapshot{
		Clients: []core.ClientEngagement{{
			ID:            "c1",
			Email:         "jane@acme.test",
			Name:          "Jane Doe",
			CompanyName:   "Acme SARL",
			Progress:      50,
			StatusMessage: "Drafting statutes",
			Timeline: []core.TimelineStep{
				{ID: "t1", Label: "Kickoff", Status: core.StepCompleted},
				{ID: "t2", Label: "Drafting statutes", Status: core.StepInProgress},
			},
			Documents: []core.ClientDocument{
				{ID: "d1", Name: "Lease", Type: "pdf", Status: core.DocumentRejected, RejectionReason: "Blurry scan."},
			},
			Notifications: core.NewInbox(
				core.Notification{ID: "n2", Title: "Payment Received", Date: paid, Type: core.NotificationSuccess},
				core.Notification{ID: "n1", Title: "Status Update", Date: paid.Add(-time.Hour), Read: true, Type: core.NotificationInfo},
			),
			ContractValue:   1000,
			AmountPaid:      600,
			Currency:        "MAD",
			PaymentStatus:   core.PaymentPartial,
			LastPaymentDate: &paid,
		}},
		AdminFeed: core.NewInbox(core.Notification{ID: "a1", Title: "Message from Acme SARL", Date: paid, Type: core.NotificationInfo}),
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		repo, path := setupRepo(t, "portal.json")
		require.NoError(t, repo.Initialize(context.Background()))

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, "portal.json", func(c *fs.Config) { c.MustExist = true })
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Rejects Unknown Format", func(t *testing.T) {
		repo, _ := setupRepo(t, "portal.csv")
		err := repo.Initialize(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})
}

func TestRepository_LoadMissingFile(t *testing.T) {
	repo, _ := setupRepo(t, "portal.json")
	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Clients)
	assert.Equal(t, 0, snap.AdminFeed.Len())
}

func TestRepository_PersistAndLoad(t *testing.T) {
	for _, name := range []string{"portal.json", "portal.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, path := setupRepo(t, name)
			require.NoError(t, repo.Initialize(ctx))

			want := sampleSnapshot()
			require.NoError(t, repo.Persist(ctx, want))

			// a second instance reads what the first wrote
			got, err := fs.NewRepository(fs.Config{Path: path}).Load(ctx)
			require.NoError(t, err)

			require.Len(t, got.Clients, 1)
			c := got.Clients[0]
			assert.Equal(t, want.Clients[0].Timeline, c.Timeline)
			assert.Equal(t, want.Clients[0].Documents, c.Documents)
			assert.Equal(t, 600.0, c.AmountPaid)
			require.NotNil(t, c.LastPaymentDate)
			assert.True(t, want.Clients[0].LastPaymentDate.Equal(*c.LastPaymentDate))

			require.Equal(t, 2, c.Notifications.Len())
			assert.Equal(t, "n2", c.Notifications.At(0).ID)
			assert.True(t, c.Notifications.At(1).Read)
			assert.Equal(t, "a1", got.AdminFeed.At(0).ID)
		})
	}
}

func TestRepository_ReadOnly(t *testing.T) {
	repo, path := setupRepo(t, "portal.json", func(c *fs.Config) { c.ReadOnly = true })
	require.NoError(t, repo.Initialize(context.Background()))

	err := repo.Persist(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, core.ErrReadOnly)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRepository_CorruptFile(t *testing.T) {
	repo, path := setupRepo(t, "portal.json")
	require.NoError(t, repo.Initialize(context.Background()))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestRepository_State(t *testing.T) {
	repo, path := setupRepo(t, "portal.yml")
	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, ".yml", state.Format)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs-repository", repo.ComponentType())
}

func TestRepository_WithService(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t, "portal.json")
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Persist(ctx, sampleSnapshot()))

	store := core.NewStore(repo)
	require.NoError(t, store.Load(ctx))
	svc := core.NewService(store)

	_, err := svc.RecordPayment(ctx, "c1", 400)
	require.NoError(t, err)

	reloaded, err := fs.NewRepository(fs.Config{Path: path}).Load(ctx)
	require.NoError(t, err)
	c := reloaded.Clients[0]
	assert.Equal(t, 1000.0, c.AmountPaid)
	assert.Equal(t, core.PaymentPaid, c.PaymentStatus)
	assert.Equal(t, "Payment Received", c.Notifications.At(0).Title)
}
