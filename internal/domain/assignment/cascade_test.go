package assignment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pms/internal/domain/org"
)

// The teardown order is load-bearing: children must go before the rows they
// reference. This pins it.
func TestCascadePlanOrder(t *testing.T) {
	service := NewService(nil, nil, nil, nil)
	steps := service.cascadePlan(Scope{PeriodID: "p1"}, false, nil, nil)

	expected := []string{
		stepPeerQuestionMappings,
		stepPeerEvaluations,
		stepDownwardEvaluations,
		stepSelfEvaluations,
		stepDeliverablesUnmapped,
		stepWbsAssignments,
		stepLineMappings,
		stepProjectAssignments,
	}
	if len(steps) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(steps))
	}
	for i, step := range steps {
		if step.Name != expected[i] {
			t.Fatalf("step %d: expected %s, got %s", i, expected[i], step.Name)
		}
	}
}

func TestScopeIsFullWipe(t *testing.T) {
	if !(Scope{}).IsFullWipe() {
		t.Fatal("zero scope must be a full wipe")
	}
	if (Scope{PeriodID: "p1"}).IsFullWipe() {
		t.Fatal("period scope is not a full wipe")
	}
	if (Scope{EmployeeID: "e1"}).IsFullWipe() {
		t.Fatal("employee scope is not a full wipe")
	}
}

func TestDistinctPairs(t *testing.T) {
	rows := []WbsAssignment{
		{EmployeeID: "e1", PeriodID: "p1"},
		{EmployeeID: "e1", PeriodID: "p1"},
		{EmployeeID: "e2", PeriodID: "p1"},
		{EmployeeID: "e1", PeriodID: "p2"},
	}

	pairs := distinctPairs(rows)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 distinct pairs, got %d", len(pairs))
	}
	if pairs[0] != (EmployeePeriod{EmployeeID: "e1", PeriodID: "p1"}) {
		t.Fatalf("expected first-seen order preserved, got %+v", pairs[0])
	}
}

func TestDistinctEmployees(t *testing.T) {
	rows := []ProjectAssignment{
		{EmployeeID: "e1"},
		{EmployeeID: "e2"},
		{EmployeeID: "e1"},
	}
	employees := distinctEmployees(rows)
	if len(employees) != 2 || employees[0] != "e1" || employees[1] != "e2" {
		t.Fatalf("unexpected distinct employees: %v", employees)
	}
}

func TestBulkResultCounts(t *testing.T) {
	var result BulkResult
	result.add(0, "id-0", nil)
	result.add(1, "", errDummy{})
	result.add(2, "id-2", nil)

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Fatalf("expected 2/1, got %d/%d", result.SuccessCount, result.FailureCount)
	}
	if result.Items[1].Status != BulkItemError || result.Items[1].Index != 1 {
		t.Fatalf("unexpected failed item: %+v", result.Items[1])
	}
	if result.Items[2].ID != "id-2" {
		t.Fatalf("unexpected third item: %+v", result.Items[2])
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "boom" }

// A project-scoped reset deletes one row out of ordering scopes that still
// hold other projects' rows; each touched scope must be compacted or the
// next insert collides on display_order.
func TestProjectResetCompactsSurvivingOrderScopes(t *testing.T) {
	store := &cascadeStoreStub{tx: &txStub{}, projRows: []ProjectAssignment{
		{ID: "a1", PeriodID: "p1", EmployeeID: "e1", ProjectID: "prj-2", DisplayOrder: 1},
		{ID: "a2", PeriodID: "p1", EmployeeID: "e2", ProjectID: "prj-2", DisplayOrder: 0},
	}}
	service := cascadeService(store, &downstreamStub{}, org.PeriodStatusInProgress)

	result, err := service.ResetProjectAssignments(context.Background(), "prj-2", "admin")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !store.tx.committed {
		t.Fatal("expected the cascade transaction to commit")
	}
	if result.Deleted[stepProjectAssignments] != 2 {
		t.Fatalf("expected 2 deleted project assignments, got %d", result.Deleted[stepProjectAssignments])
	}
	if len(store.renumbered) != 2 {
		t.Fatalf("expected 2 renumbered scopes, got %d", len(store.renumbered))
	}
	if store.renumbered[0] != (EmployeePeriod{EmployeeID: "e1", PeriodID: "p1"}) ||
		store.renumbered[1] != (EmployeePeriod{EmployeeID: "e2", PeriodID: "p1"}) {
		t.Fatalf("unexpected renumbered scopes: %+v", store.renumbered)
	}
}

// Period and employee resets delete every row of each ordering scope they
// touch, so there is nothing left to compact.
func TestPeriodResetLeavesNoScopeToCompact(t *testing.T) {
	store := &cascadeStoreStub{tx: &txStub{}, projRows: []ProjectAssignment{
		{ID: "a1", PeriodID: "p1", EmployeeID: "e1", ProjectID: "prj-1", DisplayOrder: 0},
		{ID: "a2", PeriodID: "p1", EmployeeID: "e1", ProjectID: "prj-2", DisplayOrder: 1},
	}}
	service := cascadeService(store, &downstreamStub{}, org.PeriodStatusInProgress)

	if _, err := service.ResetPeriodAssignments(context.Background(), "p1", "admin"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(store.renumbered) != 0 {
		t.Fatalf("expected no renumbering for a period reset, got %+v", store.renumbered)
	}
}

func TestCascadeStepFailureRollsBackEverything(t *testing.T) {
	boom := errors.New("downstream unavailable")
	store := &cascadeStoreStub{tx: &txStub{}, projRows: []ProjectAssignment{
		{ID: "a1", PeriodID: "p1", EmployeeID: "e1", ProjectID: "prj-2", DisplayOrder: 0},
	}}
	service := cascadeService(store, &downstreamStub{downwardErr: boom}, org.PeriodStatusInProgress)

	_, err := service.ResetProjectAssignments(context.Background(), "prj-2", "admin")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the step error, got %v", err)
	}
	if !strings.Contains(err.Error(), stepDownwardEvaluations) {
		t.Fatalf("expected the failing step name in %q", err.Error())
	}
	if store.tx.committed {
		t.Fatal("expected no commit after a failed step")
	}
	if !store.tx.rolledBack {
		t.Fatal("expected rollback after a failed step")
	}
	if store.wbsDeleted || store.projDeleted {
		t.Fatal("expected no assignment deletions after a failed step")
	}
	if len(store.renumbered) != 0 {
		t.Fatalf("expected no renumbering after a failed step, got %+v", store.renumbered)
	}
}

func TestScopedResetRejectsClosedPeriod(t *testing.T) {
	store := &cascadeStoreStub{tx: &txStub{}, projRows: []ProjectAssignment{
		{ID: "a1", PeriodID: "p1", EmployeeID: "e1", ProjectID: "prj-2", DisplayOrder: 0},
	}}
	service := cascadeService(store, &downstreamStub{}, org.PeriodStatusClosed)

	_, err := service.ResetProjectAssignments(context.Background(), "prj-2", "admin")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Rule != RulePeriodClosed {
		t.Fatalf("expected %s, got %v", RulePeriodClosed, err)
	}
	if store.tx.committed || store.projDeleted {
		t.Fatal("expected the closed-period rejection to keep project assignments intact")
	}
	if !store.tx.rolledBack {
		t.Fatal("expected rollback after the rejection")
	}
}

func cascadeService(store *cascadeStoreStub, downstream *downstreamStub, periodStatus string) *Service {
	return &Service{
		cascades:   store,
		org:        &orgStub{period: org.EvaluationPeriod{ID: "p1", Status: periodStatus}},
		downstream: downstream,
		lines:      lineStub{},
	}
}

type cascadeStoreStub struct {
	tx          *txStub
	wbsRows     []WbsAssignment
	projRows    []ProjectAssignment
	wbsDeleted  bool
	projDeleted bool
	renumbered  []EmployeePeriod
}

func (f *cascadeStoreStub) Begin(ctx context.Context) (pgx.Tx, error) { return f.tx, nil }

func (f *cascadeStoreStub) ListWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]WbsAssignment, error) {
	return f.wbsRows, nil
}

func (f *cascadeStoreStub) ListProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) ([]ProjectAssignment, error) {
	return f.projRows, nil
}

func (f *cascadeStoreStub) DeleteWbsAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	f.wbsDeleted = true
	return int64(len(f.wbsRows)), nil
}

func (f *cascadeStoreStub) DeleteProjectAssignmentsScopeTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	f.projDeleted = true
	return int64(len(f.projRows)), nil
}

func (f *cascadeStoreStub) RenumberProjectOrdersTx(ctx context.Context, tx pgx.Tx, periodID, employeeID string) error {
	f.renumbered = append(f.renumbered, EmployeePeriod{EmployeeID: employeeID, PeriodID: periodID})
	return nil
}

type downstreamStub struct {
	downwardErr error
}

func (d *downstreamStub) DeletePeerEvaluationQuestionMappingsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	return 0, nil
}

func (d *downstreamStub) DeletePeerEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	return 0, nil
}

func (d *downstreamStub) DeleteDownwardEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	return 0, d.downwardErr
}

func (d *downstreamStub) DeleteSelfEvaluationsTx(ctx context.Context, tx pgx.Tx, scope Scope) (int64, error) {
	return 0, nil
}

func (d *downstreamStub) UnmapDeliverablesTx(ctx context.Context, tx pgx.Tx, employeeID, wbsItemID string) (int64, error) {
	return 0, nil
}

type lineStub struct{}

func (lineStub) DeleteAllMappingsTx(ctx context.Context, tx pgx.Tx) (int64, error) { return 0, nil }

func (lineStub) DeleteMappingsByEmployeesTx(ctx context.Context, tx pgx.Tx, employeeIDs []string) (int64, error) {
	return 0, nil
}

func (lineStub) DeleteSecondaryMappingsByProjectTx(ctx context.Context, tx pgx.Tx, projectID string) (int64, error) {
	return 0, nil
}

type orgStub struct {
	period org.EvaluationPeriod
}

func (o *orgStub) GetPeriod(ctx context.Context, periodID string) (org.EvaluationPeriod, error) {
	return o.period, nil
}

func (o *orgStub) GetEmployee(ctx context.Context, employeeID string) (org.Employee, error) {
	return org.Employee{}, org.ErrEmployeeNotFound
}

func (o *orgStub) GetProject(ctx context.Context, projectID string) (org.Project, error) {
	return org.Project{}, org.ErrProjectNotFound
}

func (o *orgStub) GetWbsItem(ctx context.Context, wbsItemID string) (org.WbsItem, error) {
	return org.WbsItem{}, org.ErrWbsItemNotFound
}

// txStub satisfies pgx.Tx for commands whose data access is fully stubbed;
// only commit/rollback bookkeeping matters.
type txStub struct {
	committed  bool
	rolledBack bool
}

func (t *txStub) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *txStub) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *txStub) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *txStub) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *txStub) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *txStub) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *txStub) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *txStub) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *txStub) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *txStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *txStub) Conn() *pgx.Conn { return nil }
