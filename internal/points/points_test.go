package points

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/database"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/store"
)

type testEnv struct {
	svc       *Service
	instances *store.InstanceStore
	templates *store.TemplateStore
	parentID  string
	household string
	childID   string
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	u, err := store.NewUserStore(db).Create(ctx, "parent@example.com", "Pat", "hash")
	require.NoError(t, err)
	h, err := store.NewHouseholdStore(db).CreateWithAdmin(ctx, "Smiths", "AAAA0001", u.ID)
	require.NoError(t, err)
	children := store.NewChildStore(db)
	c, err := children.Create(ctx, h.ID, "Sam", nil, "pin")
	require.NoError(t, err)

	return &testEnv{
		svc:       NewService(store.NewLedgerStore(db), children),
		instances: store.NewInstanceStore(db),
		templates: store.NewTemplateStore(db),
		parentID:  u.ID,
		household: h.ID,
		childID:   c.ID,
	}
}

func (e *testEnv) earn(t *testing.T, title string, points int, date string) {
	t.Helper()
	ctx := context.Background()
	tmpl, err := e.templates.Create(ctx, e.household, title, nil, points, model.RecurrenceNone)
	require.NoError(t, err)
	ci, err := e.instances.Create(ctx, tmpl.ID, e.childID, date)
	require.NoError(t, err)
	_, err = e.instances.Submit(ctx, ci.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.instances.Verify(ctx, ci.ID, e.parentID, model.ChoreApproved, nil)
	require.NoError(t, err)
}

func TestEmptyLedgerBalanceIsZero(t *testing.T) {
	e := setupService(t)

	summary, err := e.svc.Summary(context.Background(), e.childID, e.household)
	require.NoError(t, err)
	assert.Zero(t, summary.Balance)

	txs, err := e.svc.Transactions(context.Background(), e.childID, e.household)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestBalanceIsSumOfLedger(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	e.earn(t, "Make bed", 5, "2024-06-01")
	e.earn(t, "Dishes", 12, "2024-06-01")

	summary, err := e.svc.Summary(ctx, e.childID, e.household)
	require.NoError(t, err)
	assert.Equal(t, 17, summary.Balance)

	txs, err := e.svc.Transactions(ctx, e.childID, e.household)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Dishes", txs[0].Reason, "newest first")

	sum := 0
	for _, tx := range txs {
		sum += tx.Amount
	}
	assert.Equal(t, summary.Balance, sum)
	assert.Equal(t, 17, summary.TotalEarned)
	assert.Zero(t, summary.TotalSpent)
	assert.Equal(t, "Sam", summary.ChildName)
}

func TestLedgerReadsAreHouseholdScoped(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()

	_, err := e.svc.Summary(ctx, e.childID, "another-household")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.svc.Transactions(ctx, e.childID, "another-household")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.svc.Summary(ctx, "no-such-child", e.household)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	board, err := e.svc.Leaderboard(ctx, "another-household")
	require.NoError(t, err)
	assert.Empty(t, board)
}
