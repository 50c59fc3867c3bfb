package gormdb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/gormdb"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

func setupRepo(t *testing.T) *gormdb.Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := gormdb.Open(gormdb.DialectSQLite, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func TestRepository_EmptyDatabase(t *testing.T) {
	repo := setupRepo(t)
	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Clients)
	assert.Equal(t, 0, snap.AdminFeed.Len())
}

func TestRepository_ReplaceAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := core.Snapshot{
		Clients: []core.ClientEngagement{
			{ID: "zeta", Email: "z@z.test", CompanyName: "Zeta", ContractValue: 10},
			{ID: "alpha", Email: "a@a.test", CompanyName: "Alpha",
				Notifications: core.NewInbox(core.Notification{ID: "n1", Title: "Status Update", Date: at})},
			{ID: "noemail"},
			{ID: "noemail2"},
		},
		AdminFeed: core.NewInbox(
			core.Notification{ID: "a2", Title: "newest", Date: at},
			core.Notification{ID: "a1", Title: "oldest", Date: at.Add(-time.Minute), Read: true},
		),
	}
	require.NoError(t, repo.Persist(ctx, first))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Clients, 4)
	assert.Equal(t, "zeta", got.Clients[0].ID)
	assert.Equal(t, "alpha", got.Clients[1].ID)
	assert.Equal(t, "Status Update", got.Clients[1].Notifications.At(0).Title)
	assert.Equal(t, "a2", got.AdminFeed.At(0).ID)
	assert.True(t, got.AdminFeed.At(1).Read)

	second := core.Snapshot{Clients: []core.ClientEngagement{{ID: "alpha", Email: "a@a.test"}}}
	require.NoError(t, repo.Persist(ctx, second))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Clients, 1)
	assert.Equal(t, 0, got.AdminFeed.Len())
}

func TestRepository_DuplicateEmailRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Persist(ctx, core.Snapshot{Clients: []core.ClientEngagement{{ID: "c1", Email: "x@y.test"}}}))

	err := repo.Persist(ctx, core.Snapshot{Clients: []core.ClientEngagement{
		{ID: "c2", Email: "dup@y.test"},
		{ID: "c3", Email: "DUP@y.test"},
	}})
	require.Error(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Clients, 1)
	assert.Equal(t, "c1", got.Clients[0].ID)
}

func TestRepository_WithService(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	store := core.NewStore(repo)
	require.NoError(t, store.Load(ctx))
	svc := core.NewService(store)

	c, err := svc.Onboard(ctx, core.ClientEngagement{Email: "jane@acme.test", CompanyName: "Acme", ContractValue: 1000, Currency: "MAD"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, c.ID, 250)
	require.NoError(t, err)
	_, err = svc.Notify(ctx, core.ClientSession(c), c.ID, core.Message{Text: "Thanks"})
	require.NoError(t, err)

	fresh := core.NewStore(repo)
	require.NoError(t, fresh.Load(ctx))
	got, ok := fresh.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, 250.0, got.AmountPaid)
	assert.Equal(t, core.PaymentPartial, got.PaymentStatus)
	assert.Equal(t, "Message from Acme", fresh.AdminFeed().At(0).Title)
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := gormdb.Open("oracle", "", nil)
	assert.Error(t, err)
}
