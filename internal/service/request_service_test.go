package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"worktracker/internal/model"
	"worktracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type requestFixture struct {
	db          *gorm.DB
	svc         RequestService
	invalidator *recordingInvalidator
	notifier    *recordingNotifier
	assignments repository.AssignmentRepository
}

func newRequestFixture(t *testing.T, invalidateOnAccept bool) *requestFixture {
	t.Helper()
	db := setupTestDB(t)
	seedDivision5(t, db)

	f := &requestFixture{
		db:          db,
		invalidator: &recordingInvalidator{},
		notifier:    &recordingNotifier{},
		assignments: repository.NewAssignmentRepository(db),
	}
	f.svc = f.build(invalidateOnAccept)
	return f
}

func (f *requestFixture) build(invalidateOnAccept bool) RequestService {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	return NewRequestService(RequestServiceDeps{
		Tx:                 repository.NewTransactionManager(f.db),
		Requests:           repository.NewRequestRepository(f.db),
		Assignments:        f.assignments,
		Audit:              NewAuditService(repository.NewAuditRepository(f.db)),
		Cache:              f.invalidator,
		Notifier:           f.notifier,
		Logger:             quietLog,
		InvalidateOnAccept: invalidateOnAccept,
		Now:                func() time.Time { return now },
	})
}

func (f *requestFixture) assignment(t *testing.T, id int) model.Assignment {
	t.Helper()
	var a model.Assignment
	require.NoError(t, f.db.First(&a, id).Error)
	return a
}

func (f *requestFixture) create(t *testing.T, sender, requestType, proposed string) model.Request {
	t.Helper()
	req, err := f.svc.CreateRequest(context.Background(), CreateRequestDTO{
		WorkDocumentNumber: "12/7",
		DocumentName:       "Order",
		WorkName:           "Draft",
		RequestType:        requestType,
		Receiver:           "Olga",
		ProposedDate:       proposed,
		PlanDate:           "2024-01-01",
		Sender:             sender,
	})
	require.NoError(t, err)
	return req
}

func TestRequestService_CreateRequestStartsPending(t *testing.T) {
	f := newRequestFixture(t, true)

	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	assert.Equal(t, model.RequestPending, req.Status)
	assert.False(t, req.IsDone)
	assert.Equal(t, "Ivan", req.Sender)
	assert.Equal(t, "2024-02-01", req.ProposedDate.Format(dateLayout))
	assert.Equal(t, "2024-01-01", req.PlanDate.Format(dateLayout))

	listed, err := f.svc.GetRequestsByDocument(context.Background(), "12/7")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, req.ID, listed[0].ID)

	incoming, err := f.svc.GetPendingRequestsByReceiver(context.Background(), "olga")
	require.NoError(t, err)
	assert.Len(t, incoming, 1)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, EventRequestCreated, f.notifier.events[0].Type)
}

func TestRequestService_CreateRequestRejectsBadInput(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.CreateRequest(ctx, CreateRequestDTO{WorkDocumentNumber: "12/7", RequestType: "corr9", Receiver: "Olga", Sender: "Ivan"})
	assert.ErrorIs(t, err, ErrInvalidRequestType)

	_, err = f.svc.CreateRequest(ctx, CreateRequestDTO{WorkDocumentNumber: "12/7", RequestType: "fact", Receiver: "Olga", ProposedDate: "01.02.2024", Sender: "Ivan"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestRequestService_AcceptFactWritesAssignmentDate(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	resolved, err := f.svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestAccepted, "Olga")
	require.NoError(t, err)

	assert.Equal(t, model.RequestAccepted, resolved.Status)
	assert.True(t, resolved.IsDone)
	assert.Equal(t, "Olga", resolved.ResolvedBy)

	ivan := f.assignment(t, 1)
	require.NotNil(t, ivan.FactDate)
	assert.Equal(t, "2024-02-01", ivan.FactDate.Format(dateLayout))
	assert.Nil(t, f.assignment(t, 2).FactDate, "other executors keep their row")

	assert.Equal(t, []int{5}, f.invalidator.divisions)
	assert.Equal(t, []string{"request_accepted"}, f.invalidator.reasons)

	var actions []string
	require.NoError(t, f.db.Model(&model.AuditLog{}).Order("created_at asc").Pluck("action", &actions).Error)
	assert.Contains(t, actions, model.ActionAcceptRequest)
	assert.Contains(t, actions, model.ActionWriteAssignmentDate)
}

func TestRequestService_AcceptCorrectionWritesMatchingColumn(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Petr", model.RequestTypeCorr2, "2024-03-15")

	_, err := f.svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestAccepted, "Olga")
	require.NoError(t, err)

	petr := f.assignment(t, 2)
	require.NotNil(t, petr.Korrect2)
	assert.Equal(t, "2024-03-15", petr.Korrect2.Format(dateLayout))
	assert.Nil(t, petr.Korrect1)
	assert.Nil(t, petr.FactDate)
}

func TestRequestService_DeclineLeavesAssignmentAlone(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	resolved, err := f.svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestDeclined, "Olga")
	require.NoError(t, err)

	assert.Equal(t, model.RequestDeclined, resolved.Status)
	assert.True(t, resolved.IsDone)
	assert.Nil(t, f.assignment(t, 1).FactDate)
	assert.Empty(t, f.invalidator.divisions)
}

func TestRequestService_InvalidationCanBeDisabled(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	_, err := f.svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestAccepted, "Olga")
	require.NoError(t, err)
	assert.Empty(t, f.invalidator.divisions)
	assert.NotNil(t, f.assignment(t, 1).FactDate)
}

func TestRequestService_UnknownSenderStillResolves(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Stranger", model.RequestTypeFact, "2024-02-01")

	resolved, err := f.svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestAccepted, "Olga")
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, resolved.Status)
	assert.Nil(t, f.assignment(t, 1).FactDate)
	assert.Empty(t, f.invalidator.divisions)
}

func TestRequestService_SetStatusOnResolvedRequestRepeatsSideEffects(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	_, err := f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestDeclined, "Olga")
	require.NoError(t, err)
	resolved, err := f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestAccepted, "Olga")
	require.NoError(t, err)

	assert.Equal(t, model.RequestAccepted, resolved.Status)
	assert.NotNil(t, f.assignment(t, 1).FactDate)
}

func TestRequestService_SetStatusValidation(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	_, err := f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestPending, "Olga")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetRequestStatus(ctx, "not-a-uuid", model.RequestAccepted, "Olga")
	assert.ErrorIs(t, err, ErrInvalidRequestID)

	_, err = f.svc.SetRequestStatus(ctx, "3f1c1a5e-8d1f-4a7e-9d43-4b8b3f1f0c11", model.RequestAccepted, "Olga")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

// failingAssignments fails the date write inside the accept transaction.
type failingAssignments struct {
	repository.AssignmentRepository
}

func (failingAssignments) SetDate(context.Context, int, int, string, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestRequestService_AcceptRollsBackWhenAssignmentWriteFails(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	f.assignments = failingAssignments{AssignmentRepository: f.assignments}
	svc := f.build(true)

	_, err := svc.SetRequestStatus(context.Background(), req.ID.String(), model.RequestAccepted, "Olga")
	require.Error(t, err)

	var stored model.Request
	require.NoError(t, f.db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, model.RequestPending, stored.Status)
	assert.False(t, stored.IsDone)
	assert.Nil(t, f.assignment(t, 1).FactDate)
	assert.Empty(t, f.invalidator.divisions)
}

func TestRequestService_UpdatePendingRequest(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	note := "moved"
	date := "2024-02-05"
	updated, err := f.svc.UpdateRequest(context.Background(), req.ID.String(), UpdateRequestDTO{Note: &note, ProposedDate: &date}, "Ivan")
	require.NoError(t, err)
	assert.Equal(t, "moved", updated.Note)
	assert.Equal(t, "2024-02-05", updated.ProposedDate.Format(dateLayout))
	assert.Equal(t, model.RequestTypeFact, updated.RequestType)
	assert.Equal(t, model.RequestPending, updated.Status)
}

func TestRequestService_ResolvedRequestCannotBeEditedOrDeleted(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")
	_, err := f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestDeclined, "Olga")
	require.NoError(t, err)

	note := "too late"
	_, err = f.svc.UpdateRequest(ctx, req.ID.String(), UpdateRequestDTO{Note: &note}, "Ivan")
	assert.ErrorIs(t, err, ErrRequestNotPending)

	err = f.svc.DeleteRequest(ctx, req.ID.String(), "Ivan")
	assert.ErrorIs(t, err, ErrRequestNotPending)

	var stored model.Request
	require.NoError(t, f.db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, model.RequestDeclined, stored.Status)
	assert.Empty(t, stored.Note)
}

func TestRequestService_DeletePendingRequest(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()
	req := f.create(t, "Ivan", model.RequestTypeCorr1, "2024-01-10")

	require.NoError(t, f.svc.DeleteRequest(ctx, req.ID.String(), "Ivan"))

	listed, err := f.svc.GetRequestsByDocument(ctx, "12/7")
	require.NoError(t, err)
	assert.Empty(t, listed)

	err = f.svc.DeleteRequest(ctx, req.ID.String(), "Ivan")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestWorkIDFromDocumentNumber(t *testing.T) {
	id, err := workIDFromDocumentNumber("12/7")
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	id, err = workIDFromDocumentNumber("A/12/345")
	require.NoError(t, err)
	assert.Equal(t, 345, id)

	_, err = workIDFromDocumentNumber("12")
	assert.ErrorIs(t, err, ErrInvalidDocumentNumber)
	_, err = workIDFromDocumentNumber("12/x")
	assert.ErrorIs(t, err, ErrInvalidDocumentNumber)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2024-02-01T18:30:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d.Format(dateLayout))

	_, err = ParseDate("yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestRequestService_OnlyPartiesMayChangeARequest(t *testing.T) {
	f := newRequestFixture(t, true)
	ctx := context.Background()
	req := f.create(t, "Ivan", model.RequestTypeFact, "2024-02-01")

	_, err := f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestAccepted, "Petr")
	assert.ErrorIs(t, err, ErrNotRequestParty)
	assert.Nil(t, f.assignment(t, 1).FactDate)

	note := "hijack"
	_, err = f.svc.UpdateRequest(ctx, req.ID.String(), UpdateRequestDTO{Note: &note}, "Olga")
	assert.ErrorIs(t, err, ErrNotRequestParty)

	err = f.svc.DeleteRequest(ctx, req.ID.String(), "Olga")
	assert.ErrorIs(t, err, ErrNotRequestParty)

	var stored model.Request
	require.NoError(t, f.db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, model.RequestPending, stored.Status)
	assert.Empty(t, stored.Note)

	_, err = f.svc.SetRequestStatus(ctx, req.ID.String(), model.RequestDeclined, "olga")
	assert.NoError(t, err, "receiver match ignores case")
}
