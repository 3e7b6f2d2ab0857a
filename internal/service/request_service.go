package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"worktracker/internal/model"
	"worktracker/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// --- DTOs ---

type CreateRequestDTO struct {
	WorkDocumentNumber string `json:"work_document_number" binding:"required"`
	DocumentName       string `json:"document_name"`
	WorkName           string `json:"work_name"`
	RequestType        string `json:"request_type" binding:"required,oneof=fact corr1 corr2 corr3"`
	Receiver           string `json:"receiver" binding:"required"`
	ProposedDate       string `json:"proposed_date"` // YYYY-MM-DD
	Note               string `json:"note"`
	Executor           string `json:"executor"`
	Controller         string `json:"controller"`
	PlanDate           string `json:"plan_date"`
	Korrect1           string `json:"korrect1"`
	Korrect2           string `json:"korrect2"`
	Korrect3           string `json:"korrect3"`
	Sender             string `json:"-"` // resolved identity of the caller
}

// UpdateRequestDTO changes only the fields that are set.
type UpdateRequestDTO struct {
	RequestType  *string `json:"request_type" binding:"omitempty,oneof=fact corr1 corr2 corr3"`
	Receiver     *string `json:"receiver"`
	ProposedDate *string `json:"proposed_date"`
	Note         *string `json:"note"`
}

type SetStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=ACCEPTED DECLINED"`
}

// --- Interface ---

type RequestService interface {
	CreateRequest(ctx context.Context, req CreateRequestDTO) (model.Request, error)
	GetRequestsByDocument(ctx context.Context, documentNumber string) ([]model.Request, error)
	GetPendingRequestsByReceiver(ctx context.Context, receiver string) ([]model.Request, error)
	SetRequestStatus(ctx context.Context, id string, status string, actor string) (model.Request, error)
	UpdateRequest(ctx context.Context, id string, req UpdateRequestDTO, actor string) (model.Request, error)
	DeleteRequest(ctx context.Context, id string, actor string) error
}

// RequestServiceDeps wires the workflow. Cache and Notifier are optional.
type RequestServiceDeps struct {
	Tx          repository.TransactionManager
	Requests    repository.RequestRepository
	Assignments repository.AssignmentRepository
	Audit       AuditService
	Cache       CacheInvalidator
	Notifier    Notifier
	Logger      logrus.FieldLogger
	// InvalidateOnAccept clears the sender's division snapshot after an accepted request
	// rewrote an assignment date. When false the snapshot stays stale until it expires.
	InvalidateOnAccept bool
	Now                func() time.Time
}

type requestService struct {
	tx                 repository.TransactionManager
	requests           repository.RequestRepository
	assignments        repository.AssignmentRepository
	audit              AuditService
	cache              CacheInvalidator
	notifier           Notifier
	log                logrus.FieldLogger
	invalidateOnAccept bool
	now                func() time.Time
}

func NewRequestService(deps RequestServiceDeps) RequestService {
	s := &requestService{
		tx:                 deps.Tx,
		requests:           deps.Requests,
		assignments:        deps.Assignments,
		audit:              deps.Audit,
		cache:              deps.Cache,
		notifier:           deps.Notifier,
		log:                deps.Logger,
		invalidateOnAccept: deps.InvalidateOnAccept,
		now:                deps.Now,
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, req CreateRequestDTO) (model.Request, error) {
	if !model.IsKnownRequestType(req.RequestType) {
		return model.Request{}, errors.Wrapf(ErrInvalidRequestType, "%q", req.RequestType)
	}

	dates := make([]*time.Time, 5)
	for i, raw := range []string{req.ProposedDate, req.PlanDate, req.Korrect1, req.Korrect2, req.Korrect3} {
		d, err := ParseDate(raw)
		if err != nil {
			return model.Request{}, err
		}
		dates[i] = d
	}

	request := model.Request{
		WorkDocumentNumber: strings.TrimSpace(req.WorkDocumentNumber),
		DocumentName:       req.DocumentName,
		WorkName:           req.WorkName,
		RequestType:        req.RequestType,
		Sender:             req.Sender,
		Receiver:           req.Receiver,
		RequestDate:        s.now(),
		ProposedDate:       dates[0],
		Note:               req.Note,
		Status:             model.RequestPending,
		IsDone:             false,
		Executor:           req.Executor,
		Controller:         req.Controller,
		PlanDate:           dates[1],
		Korrect1:           dates[2],
		Korrect2:           dates[3],
		Korrect3:           dates[4],
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requests.Create(txCtx, &request); err != nil {
			return errors.Wrap(err, "failed to create request")
		}
		return s.audit.Record(txCtx, request.Sender, model.ActionCreateRequest, request.ID.String(), request.WorkDocumentNumber,
			map[string]interface{}{
				"request_type":  request.RequestType,
				"receiver":      request.Receiver,
				"proposed_date": formatDate(request.ProposedDate),
			})
	})
	if err != nil {
		return model.Request{}, err
	}

	s.notifier.Publish(RequestEvent{Type: EventRequestCreated, Request: request})
	return request, nil
}

func (s *requestService) GetRequestsByDocument(ctx context.Context, documentNumber string) ([]model.Request, error) {
	requests, err := s.requests.ListByDocument(ctx, documentNumber)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list requests by document")
	}
	return requests, nil
}

func (s *requestService) GetPendingRequestsByReceiver(ctx context.Context, receiver string) ([]model.Request, error) {
	requests, err := s.requests.ListPendingByReceiver(ctx, receiver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list incoming requests")
	}
	return requests, nil
}

// SetRequestStatus resolves a request; only its receiver may do so. Accepting also
// writes the proposed date into the sender's assignment; both writes commit together or
// not at all. Calling it again on a resolved request repeats the side effects.
func (s *requestService) SetRequestStatus(ctx context.Context, id string, status string, actor string) (model.Request, error) {
	if status != model.RequestAccepted && status != model.RequestDeclined {
		return model.Request{}, errors.Wrapf(ErrInvalidStatus, "got %q", status)
	}
	requestID, err := parseRequestID(id)
	if err != nil {
		return model.Request{}, err
	}

	var request model.Request
	staleDivision := 0
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(found.Receiver, actor) {
			return errors.Wrapf(ErrNotRequestParty, "only the receiver %s resolves request %s", found.Receiver, found.ID)
		}
		request = *found

		if status == model.RequestAccepted {
			division, err := s.applyProposedDate(txCtx, &request, actor)
			if err != nil {
				return err
			}
			staleDivision = division
		}

		now := s.now()
		request.Status = status
		request.IsDone = true
		request.ResolvedBy = actor
		request.ResolvedAt = &now
		if err := s.requests.Update(txCtx, &request); err != nil {
			return errors.Wrap(err, "failed to update request status")
		}

		action := model.ActionDeclineRequest
		if status == model.RequestAccepted {
			action = model.ActionAcceptRequest
		}
		return s.audit.Record(txCtx, actor, action, request.ID.String(), request.WorkDocumentNumber,
			map[string]interface{}{"request_type": request.RequestType, "sender": request.Sender})
	})
	if err != nil {
		return model.Request{}, err
	}

	recordTransition(status)
	if staleDivision != 0 && s.invalidateOnAccept && s.cache != nil {
		s.cache.Invalidate(staleDivision, "request_accepted")
	}
	s.notifier.Publish(RequestEvent{Type: EventRequestStatusChanged, Request: request})
	return request, nil
}

// applyProposedDate writes the request's proposed date into the matching assignment and
// returns the executor's division when a row was changed. Unresolvable work or sender
// ids skip the write without failing the transition.
func (s *requestService) applyProposedDate(ctx context.Context, request *model.Request, actor string) (int, error) {
	entry := s.log.WithFields(logrus.Fields{
		"request_id":      request.ID.String(),
		"document_number": request.WorkDocumentNumber,
		"sender":          request.Sender,
	})

	workID, err := workIDFromDocumentNumber(request.WorkDocumentNumber)
	if err != nil {
		entry.WithError(err).Warn("accepted request has no resolvable work id, assignment left unchanged")
		return 0, nil
	}

	user, err := s.assignments.FindUserByName(ctx, request.Sender)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry.Warn("accepted request sender is not a known user, assignment left unchanged")
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve request sender")
	}

	if request.ProposedDate == nil {
		entry.Debug("accepted request has no proposed date")
		return 0, nil
	}
	column, ok := model.AssignmentColumn(request.RequestType)
	if !ok {
		entry.WithField("request_type", request.RequestType).Warn("accepted request has unknown type, assignment left unchanged")
		return 0, nil
	}

	affected, err := s.assignments.SetDate(ctx, workID, user.ID, column, *request.ProposedDate)
	if err != nil {
		return 0, errors.Wrap(err, "failed to write assignment date")
	}
	if affected == 0 {
		entry.WithField("work_id", workID).Warn("no assignment matched accepted request")
		return 0, nil
	}

	err = s.audit.Record(ctx, actor, model.ActionWriteAssignmentDate, strconv.Itoa(workID), request.WorkDocumentNumber,
		map[string]interface{}{
			"executor_id": user.ID,
			"column":      column,
			"date":        formatDate(request.ProposedDate),
			"request_id":  request.ID.String(),
		})
	if err != nil {
		return 0, err
	}
	return user.DivisionID, nil
}

// UpdateRequest lets the sender edit a pending request. A resolved request is left as is and
// ErrRequestNotPending is returned.
func (s *requestService) UpdateRequest(ctx context.Context, id string, req UpdateRequestDTO, actor string) (model.Request, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return model.Request{}, err
	}
	if req.RequestType != nil && !model.IsKnownRequestType(*req.RequestType) {
		return model.Request{}, errors.Wrapf(ErrInvalidRequestType, "%q", *req.RequestType)
	}
	var proposed *time.Time
	if req.ProposedDate != nil {
		if proposed, err = ParseDate(*req.ProposedDate); err != nil {
			return model.Request{}, err
		}
	}

	var request model.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(found.Sender, actor) {
			return errors.Wrapf(ErrNotRequestParty, "only the sender %s changes request %s", found.Sender, found.ID)
		}
		if !found.IsPending() {
			return errors.Wrapf(ErrRequestNotPending, "request %s is %s", found.ID, found.Status)
		}
		request = *found

		if req.RequestType != nil {
			request.RequestType = *req.RequestType
		}
		if req.Receiver != nil {
			request.Receiver = *req.Receiver
		}
		if req.ProposedDate != nil {
			request.ProposedDate = proposed
		}
		if req.Note != nil {
			request.Note = *req.Note
		}
		if err := s.requests.Update(txCtx, &request); err != nil {
			return errors.Wrap(err, "failed to update request")
		}
		return s.audit.Record(txCtx, actor, model.ActionUpdateRequest, request.ID.String(), request.WorkDocumentNumber,
			map[string]interface{}{
				"request_type":  request.RequestType,
				"receiver":      request.Receiver,
				"proposed_date": formatDate(request.ProposedDate),
			})
	})
	if err != nil {
		return model.Request{}, err
	}

	s.notifier.Publish(RequestEvent{Type: EventRequestUpdated, Request: request})
	return request, nil
}

// DeleteRequest lets the sender remove a pending request. A resolved request is kept and
// ErrRequestNotPending is returned.
func (s *requestService) DeleteRequest(ctx context.Context, id string, actor string) error {
	requestID, err := parseRequestID(id)
	if err != nil {
		return err
	}

	var request model.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(found.Sender, actor) {
			return errors.Wrapf(ErrNotRequestParty, "only the sender %s changes request %s", found.Sender, found.ID)
		}
		if !found.IsPending() {
			return errors.Wrapf(ErrRequestNotPending, "request %s is %s", found.ID, found.Status)
		}
		request = *found

		if err := s.requests.Delete(txCtx, requestID); err != nil {
			return errors.Wrap(err, "failed to delete request")
		}
		return s.audit.Record(txCtx, actor, model.ActionDeleteRequest, request.ID.String(), request.WorkDocumentNumber, nil)
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(RequestEvent{Type: EventRequestDeleted, Request: request})
	return nil
}

func (s *requestService) load(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	found, err := s.requests.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrRequestNotFound, "id %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load request")
	}
	return found, nil
}

// --- Helpers ---

func parseRequestID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrInvalidRequestID, err.Error())
	}
	return parsed, nil
}

// workIDFromDocumentNumber takes the numeric segment after the last "/".
func workIDFromDocumentNumber(documentNumber string) (int, error) {
	i := strings.LastIndex(documentNumber, "/")
	if i < 0 {
		return 0, errors.Wrapf(ErrInvalidDocumentNumber, "%q", documentNumber)
	}
	workID, err := strconv.Atoi(strings.TrimSpace(documentNumber[i+1:]))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidDocumentNumber, "%q", documentNumber)
	}
	return workID, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339; empty input means "no date".
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDate, "%q", raw)
	}
	d := dayOf(t)
	return &d, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
