package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dukerupert/chorestore/internal/model"
)

func TestRewardLists(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	rs := NewRewardStore(db)
	ctx := context.Background()

	movie, err := rs.Create(ctx, f.household.ID, "Movie Night", nil, 75)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	candy, err := rs.Create(ctx, f.household.ID, "Candy", nil, 10)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	shop, err := rs.ListShop(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list shop: %v", err)
	}
	if len(shop) != 2 || shop[0].ID != candy.ID {
		t.Errorf("shop = %+v, want cheapest first", shop)
	}

	if err := rs.Deactivate(ctx, movie.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	all, err := rs.List(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(all) != 1 || all[0].ID != candy.ID {
		t.Errorf("rewards = %+v, want only Candy", all)
	}

	if got, _ := rs.GetInHousehold(ctx, candy.ID, "elsewhere"); got != nil {
		t.Error("expected nil for reward of another household")
	}
}

func TestRedemptionInsufficientPoints(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 5)
	ctx := context.Background()

	reward, _ := NewRewardStore(db).Create(ctx, f.household.ID, "Movie Night", nil, 75)
	_, err := NewRedemptionStore(db).Create(ctx, f.child.ID, reward)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM redemptions`).Scan(&n)
	if n != 0 {
		t.Errorf("redemptions = %d, want 0", n)
	}
	balance, _ := NewLedgerStore(db).Balance(ctx, f.child.ID)
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}
}

func TestRedemptionSpends(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 30)
	ctx := context.Background()
	rds := NewRedemptionStore(db)
	ls := NewLedgerStore(db)

	reward, _ := NewRewardStore(db).Create(ctx, f.household.ID, "Ice cream", nil, 20)
	rd, err := rds.Create(ctx, f.child.ID, reward)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if rd.Status != model.RedemptionRequested {
		t.Errorf("status = %q, want REQUESTED", rd.Status)
	}
	if rd.Reward == nil || rd.Reward.Name != "Ice cream" || rd.Child == nil {
		t.Errorf("redemption = %+v", rd)
	}

	balance, _ := ls.Balance(ctx, f.child.ID)
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
	txs, _ := ls.ListForChild(ctx, f.child.ID)
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txs))
	}
	spent := txs[0]
	if spent.Type != model.PointsSpent || spent.Amount != -20 || spent.Reason != "Ice cream" {
		t.Errorf("spent entry = %+v", spent)
	}
	if spent.RedemptionID == nil || *spent.RedemptionID != rd.ID {
		t.Errorf("redemption_id = %v, want %s", spent.RedemptionID, rd.ID)
	}

	summary, err := ls.Summary(ctx, f.child.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalEarned != 30 || summary.TotalSpent != 20 || summary.Balance != 10 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRedemptionConcurrentNeverOverdraws(t *testing.T) {
	db := setupFileTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 50)
	ctx := context.Background()
	rds := NewRedemptionStore(db)

	reward, _ := NewRewardStore(db).Create(ctx, f.household.ID, "Sticker", nil, 20)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, short := 0, 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rds.Create(ctx, f.child.ID, reward)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientPoints):
				short++
			default:
				t.Errorf("redeem: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 2 || short != 4 {
		t.Errorf("succeeded = %d, refused = %d, want 2 and 4", ok, short)
	}
	balance, _ := NewLedgerStore(db).Balance(ctx, f.child.ID)
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
}

func TestRedemptionUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 30)
	ctx := context.Background()
	rds := NewRedemptionStore(db)

	reward, _ := NewRewardStore(db).Create(ctx, f.household.ID, "Ice cream", nil, 20)
	rd, _ := rds.Create(ctx, f.child.ID, reward)

	got, err := rds.UpdateStatus(ctx, rd.ID, model.RedemptionRequested, model.RedemptionApproved)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.Status != model.RedemptionApproved {
		t.Errorf("status = %q, want APPROVED", got.Status)
	}
	if _, err := rds.UpdateStatus(ctx, rd.ID, model.RedemptionRequested, model.RedemptionDelivered); !errors.Is(err, ErrStale) {
		t.Errorf("err = %v, want ErrStale", err)
	}

	list, err := rds.ListForHousehold(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list for household: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("redemptions = %d, want 1", len(list))
	}
}

func TestLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 5)
	ctx := context.Background()

	if _, err := NewChildStore(db).Create(ctx, f.household.ID, "Ava", nil, "pin"); err != nil {
		t.Fatalf("create child: %v", err)
	}

	board, err := NewLedgerStore(db).Leaderboard(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("rows = %d, want 2", len(board))
	}
	if board[0].ChildName != "Sam" || board[0].Balance != 5 {
		t.Errorf("leader = %+v", board[0])
	}
	if board[1].Balance != 0 {
		t.Errorf("second balance = %d, want 0", board[1].Balance)
	}
}
