package orderline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
)

func testCatalog() ProductIndex {
	return IndexProducts([]models.Product{
		{ID: 1, Name: "Windows 11 Pro", UnitPrice: models.MustMoney("45")},
		{ID: 2, Name: "Office 2021", UnitPrice: models.MustMoney("65")},
	})
}

func TestEditRemoveAndAddScenario(t *testing.T) {
	persisted := []models.ActionLine{
		{ID: 10, ActionID: 4, ProductID: 1, ProductName: "Windows 11 Pro", Quantity: 2, UnitPrice: models.MustMoney("45")},
	}
	draft := EditDraft(models.Action{ID: 4, Type: constants.ActionTypePurchase}, persisted)
	if !draft.Price.Equal(models.MustMoney("90")) {
		t.Fatalf("initial price want 90.00 got %s", draft.Price)
	}

	if _, err := draft.RemoveLine(0); err != nil {
		t.Fatalf("remove line failed: %v", err)
	}
	if _, err := draft.AddLine(testCatalog(), 2, 1); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	plan := Reconcile(draft, persisted)
	if len(plan.ToDelete) != 1 || plan.ToDelete[0].ID != 10 {
		t.Fatalf("toDelete want [10] got %+v", plan.ToDelete)
	}
	if len(plan.ToCreate) != 1 || plan.ToCreate[0].ProductID != 2 || plan.ToCreate[0].Quantity != 1 {
		t.Fatalf("toCreate want [{product 2 qty 1}] got %+v", plan.ToCreate)
	}
	if len(plan.ToUpdate) != 0 {
		t.Fatalf("toUpdate want empty got %+v", plan.ToUpdate)
	}
	if !draft.Price.Equal(models.MustMoney("65")) {
		t.Fatalf("price want 65.00 got %s", draft.Price)
	}
}

func TestReconcilePartitionsAreCompleteAndDisjoint(t *testing.T) {
	persisted := []models.ActionLine{
		{ID: 1, ProductID: 1, Quantity: 1},
		{ID: 2, ProductID: 2, Quantity: 1},
		{ID: 3, ProductID: 1, Quantity: 4},
	}
	draft := NewDraft(constants.ActionTypeQuote)
	draft.Lines = []Line{
		ExistingLine{ID: 2, Item: Item{ProductID: 2, Quantity: 5}},
		NewLine{Item: Item{ProductID: 1, Quantity: 1}},
		ExistingLine{ID: 3, Item: Item{ProductID: 1, Quantity: 4}},
		NewLine{Item: Item{ProductID: 2, Quantity: 2}},
	}

	plan := Reconcile(draft, persisted)

	if len(plan.ToDelete) != 1 || plan.ToDelete[0].ID != 1 {
		t.Fatalf("toDelete want [1] got %+v", plan.ToDelete)
	}
	if len(plan.ToUpdate) != 2 || plan.ToUpdate[0].ID != 2 || plan.ToUpdate[1].ID != 3 {
		t.Fatalf("toUpdate want [2 3] got %+v", plan.ToUpdate)
	}
	if len(plan.ToCreate) != 2 {
		t.Fatalf("toCreate want 2 lines got %+v", plan.ToCreate)
	}
	seen := map[uint]string{}
	for _, d := range plan.ToDelete {
		seen[d.ID] = "delete"
	}
	for _, u := range plan.ToUpdate {
		if kind, dup := seen[u.ID]; dup {
			t.Fatalf("line %d in both %s and update", u.ID, kind)
		}
		seen[u.ID] = "update"
	}
	if len(plan.ToDelete)+len(plan.ToUpdate)+len(plan.ToCreate) != len(draft.Lines)+1 {
		t.Fatalf("partition sizes do not account for every line")
	}
}

func TestReconcileUpdatesUnchangedLines(t *testing.T) {
	persisted := []models.ActionLine{{ID: 7, ProductID: 1, Quantity: 1, UnitPrice: models.MustMoney("45")}}
	draft := EditDraft(models.Action{ID: 1}, persisted)

	plan := Reconcile(draft, persisted)
	if len(plan.ToUpdate) != 1 || plan.ToUpdate[0].ID != 7 {
		t.Fatalf("unchanged existing line should still be updated, got %+v", plan.ToUpdate)
	}
}

func TestAddLineErrors(t *testing.T) {
	draft := NewDraft("")
	if _, err := draft.AddLine(testCatalog(), 99, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound got %v", err)
	}
	for _, qty := range []int{0, -3} {
		if _, err := draft.AddLine(testCatalog(), 1, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d want ErrInvalidQuantity got %v", qty, err)
		}
	}
	if len(draft.Lines) != 0 || !draft.Price.IsZero() {
		t.Fatalf("failed adds must not change the draft")
	}
}

func TestRemoveLineOutOfRange(t *testing.T) {
	draft := NewDraft("")
	if _, err := draft.AddLine(testCatalog(), 1, 2); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	for _, idx := range []int{-1, 1, 5} {
		if _, err := draft.RemoveLine(idx); !errors.Is(err, ErrLineIndexOutOfRange) {
			t.Fatalf("index %d want ErrLineIndexOutOfRange got %v", idx, err)
		}
	}
	if _, err := draft.RemoveLine(0); err != nil {
		t.Fatalf("remove line failed: %v", err)
	}
	if !draft.Price.IsZero() {
		t.Fatalf("empty draft price want 0 got %s", draft.Price)
	}
}

func TestDraftJSONKeepsLineKinds(t *testing.T) {
	id := uint(4)
	draft := &Draft{ID: &id, Type: constants.ActionTypePurchase, ClientID: 3, Lines: []Line{
		ExistingLine{ID: 10, Item: Item{ProductID: 1, ProductName: "Windows 11 Pro", Quantity: 2, UnitPrice: models.MustMoney("45")}},
		NewLine{Item: Item{ProductID: 2, ProductName: "Office 2021", Quantity: 1, UnitPrice: models.MustMoney("65")}},
	}}
	draft.Recompute()

	payload, err := json.Marshal(draft)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded Draft
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded.Lines[0].(ExistingLine); !ok {
		t.Fatalf("first line want ExistingLine got %T", decoded.Lines[0])
	}
	if _, ok := decoded.Lines[1].(NewLine); !ok {
		t.Fatalf("second line want NewLine got %T", decoded.Lines[1])
	}
	if !decoded.Price.Equal(models.MustMoney("155")) {
		t.Fatalf("decoded price want 155.00 got %s", decoded.Price)
	}

	if err := json.Unmarshal([]byte(`{"lines":[{"kind":"existing","product_id":1,"quantity":1}]}`), &decoded); err == nil {
		t.Fatalf("existing line without id should be rejected")
	}
}

type recordingWriter struct {
	mu       sync.Mutex
	calls    []string
	failLine uint
}

func (w *recordingWriter) log(kind string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, kind)
}

func (w *recordingWriter) CreateLine(_ context.Context, _ uint, _ Item) error {
	w.log(constants.LineOpCreate)
	return nil
}

func (w *recordingWriter) UpdateLine(_ context.Context, _ uint, lineID uint, _ Item) error {
	w.log(constants.LineOpUpdate)
	if lineID == w.failLine {
		return errors.New("backend rejected")
	}
	return nil
}

func (w *recordingWriter) DeleteLine(_ context.Context, _ uint) error {
	w.log(constants.LineOpDelete)
	return nil
}

func TestApplyRunsDeletesFirst(t *testing.T) {
	plan := Plan{
		ToDelete: []models.ActionLine{{ID: 1}, {ID: 2}},
		ToUpdate: []ExistingLine{{ID: 3}, {ID: 4}},
		ToCreate: []NewLine{{Item: Item{ProductID: 9, Quantity: 1}}},
	}
	w := &recordingWriter{failLine: 4}

	report := plan.Apply(context.Background(), 5, w, ApplyOptions{Concurrency: 2})

	if len(w.calls) != 5 {
		t.Fatalf("want 5 backend calls got %v", w.calls)
	}
	if w.calls[0] != constants.LineOpDelete || w.calls[1] != constants.LineOpDelete {
		t.Fatalf("deletes must run first, got %v", w.calls)
	}
	if report.Deleted != 2 || report.Created != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.OK() || len(report.Failed) != 1 || report.Failed[0].Op.LineID != 4 {
		t.Fatalf("want one failed update for line 4 got %+v", report.Failed)
	}
}

func TestApplyCanceledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan := Plan{ToCreate: []NewLine{{Item: Item{ProductID: 1, Quantity: 1}}}}

	report := plan.Apply(ctx, 1, &recordingWriter{}, ApplyOptions{})
	if len(report.Failed) != 1 || !errors.Is(report.Failed[0].Err, context.Canceled) {
		t.Fatalf("want canceled failure got %+v", report.Failed)
	}
}
