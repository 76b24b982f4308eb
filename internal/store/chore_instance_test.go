package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dukerupert/chorestore/internal/model"
)

func TestTemplateCRUD(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	ts := NewTemplateStore(db)
	ctx := context.Background()

	first := f.template(t, "Make bed", 5, model.RecurrenceDaily)
	second := f.template(t, "Dishes", 10, model.RecurrenceNone)

	list, err := ts.ListActive(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("list = %+v, want newest first", list)
	}

	first.Title = "Make the bed"
	first.Points = 7
	updated, err := ts.Update(ctx, first)
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.Title != "Make the bed" || updated.Points != 7 {
		t.Errorf("updated = %+v", updated)
	}

	if err := ts.Deactivate(ctx, second.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	list, err = ts.ListActive(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("active templates = %d, want 1", len(list))
	}
	got, err := ts.GetInHousehold(ctx, second.ID, f.household.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got == nil || got.IsActive {
		t.Errorf("deactivated template = %+v", got)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	f.template(t, "Make bed", 5, model.RecurrenceDaily)
	f.template(t, "Water plants", 3, model.RecurrenceWeekly)
	f.template(t, "Clean garage", 20, model.RecurrenceNone)

	n, err := is.Generate(ctx, f.household.ID, nil, "2024-06-01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n != 2 {
		t.Errorf("created = %d, want 2", n)
	}

	n, err = is.Generate(ctx, f.household.ID, nil, "2024-06-01")
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if n != 0 {
		t.Errorf("second generate created = %d, want 0", n)
	}

	list, err := is.ListForChild(ctx, f.child.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("list for child: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("instances = %d, want 2", len(list))
	}
	for _, ci := range list {
		if ci.Status != model.ChoreTodo {
			t.Errorf("status = %q, want TODO", ci.Status)
		}
		if ci.Template == nil || ci.AssignedChild == nil {
			t.Errorf("instance %s missing nested template or child", ci.ID)
		}
		if ci.Submission != nil || ci.Verification != nil {
			t.Errorf("instance %s has unexpected submission or verification", ci.ID)
		}
	}
}

func TestGenerateLeavesExistingRows(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	f.template(t, "Make bed", 5, model.RecurrenceDaily)
	if _, err := is.Generate(ctx, f.household.ID, &f.child.ID, "2024-06-01"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	list, _ := is.ListForChild(ctx, f.child.ID, "2024-06-01")
	if _, err := is.Submit(ctx, list[0].ID, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := is.Generate(ctx, f.household.ID, nil, "2024-06-01"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := is.GetByID(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	if got.Status != model.ChoreSubmitted {
		t.Errorf("status = %q, want SUBMITTED", got.Status)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	db := setupFileTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	f.template(t, "Make bed", 5, model.RecurrenceDaily)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := is.Generate(ctx, f.household.ID, nil, "2024-06-01"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("generate: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM chore_instances`).Scan(&n); err != nil {
		t.Fatalf("count instances: %v", err)
	}
	if n != 1 {
		t.Errorf("instances = %d, want 1", n)
	}
}

func TestCreateDuplicateInstance(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	tmpl := f.template(t, "Clean garage", 20, model.RecurrenceNone)
	if _, err := is.Create(ctx, tmpl.ID, f.child.ID, "2024-06-01"); err != nil {
		t.Fatalf("create instance: %v", err)
	}
	if _, err := is.Create(ctx, tmpl.ID, f.child.ID, "2024-06-01"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestSubmitAndVerify(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ls := NewLedgerStore(db)
	ctx := context.Background()

	tmpl := f.template(t, "Make bed", 5, model.RecurrenceDaily)
	ci, err := is.Create(ctx, tmpl.ID, f.child.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}

	note := "done!"
	sub, err := is.Submit(ctx, ci.ID, &note, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Note == nil || *sub.Note != note {
		t.Errorf("note = %v, want %q", sub.Note, note)
	}
	if _, err := is.Submit(ctx, ci.ID, nil, nil); !errors.Is(err, ErrStale) {
		t.Errorf("second submit err = %v, want ErrStale", err)
	}

	pending, err := is.ListPending(ctx, f.household.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Submission == nil {
		t.Fatalf("pending = %+v", pending)
	}

	v, err := is.Verify(ctx, ci.ID, f.user.ID, model.ChoreApproved, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if v.Status != model.ChoreApproved {
		t.Errorf("verification status = %q", v.Status)
	}
	if _, err := is.Verify(ctx, ci.ID, f.user.ID, model.ChoreApproved, nil); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("second verify err = %v, want ErrAlreadyVerified", err)
	}

	balance, err := ls.Balance(ctx, f.child.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}

	txs, err := ls.ListForChild(ctx, f.child.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if txs[0].Type != model.PointsEarned || txs[0].Reason != "Make bed" {
		t.Errorf("transaction = %+v", txs[0])
	}
	if txs[0].ChoreInstanceID == nil || *txs[0].ChoreInstanceID != ci.ID {
		t.Errorf("chore_instance_id = %v, want %s", txs[0].ChoreInstanceID, ci.ID)
	}

	got, err := is.GetByID(ctx, ci.ID)
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	if got.Status != model.ChoreApproved || got.Verification == nil || got.Submission == nil {
		t.Errorf("instance = %+v", got)
	}
}

func TestVerifyDeniedAwardsNothing(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	tmpl := f.template(t, "Make bed", 5, model.RecurrenceDaily)
	ci, _ := is.Create(ctx, tmpl.ID, f.child.ID, "2024-06-01")
	if _, err := is.Submit(ctx, ci.ID, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	msg := "still messy"
	if _, err := is.Verify(ctx, ci.ID, f.user.ID, model.ChoreDenied, &msg); err != nil {
		t.Fatalf("verify: %v", err)
	}

	balance, _ := NewLedgerStore(db).Balance(ctx, f.child.ID)
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestVerifyRequiresSubmitted(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	is := NewInstanceStore(db)
	ctx := context.Background()

	tmpl := f.template(t, "Make bed", 5, model.RecurrenceDaily)
	ci, _ := is.Create(ctx, tmpl.ID, f.child.ID, "2024-06-01")
	if _, err := is.Verify(ctx, ci.ID, f.user.ID, model.ChoreApproved, nil); !errors.Is(err, ErrStale) {
		t.Errorf("err = %v, want ErrStale", err)
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM verifications`).Scan(&n)
	if n != 0 {
		t.Errorf("verifications = %d, want 0", n)
	}
}

func TestLedgerIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	f.earn(t, 5)

	if _, err := db.Exec(`UPDATE points_transactions SET amount = 500`); err == nil {
		t.Error("expected update of ledger to fail")
	}
	if _, err := db.Exec(`DELETE FROM points_transactions`); err == nil {
		t.Error("expected delete from ledger to fail")
	}
	balance, _ := NewLedgerStore(db).Balance(context.Background(), f.child.ID)
	if balance != 5 {
		t.Errorf("balance = %d, want 5", balance)
	}
}
