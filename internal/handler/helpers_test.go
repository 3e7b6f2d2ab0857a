package handler_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"worktracker/internal/middleware"
	"worktracker/internal/model"
	"worktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var secret = []byte("handler-secret")

func token(t *testing.T, userID int, name, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(userID),
		"name": name,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func newRouter(register ...func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	for _, r := range register {
		r(router.Group(""))
	}
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type fakeWorkItems struct {
	lastQuery service.WorkItemQuery
	page      service.WorkItemPage
	items     []model.WorkItem
	cleared   []int
	err       error
}

func (f *fakeWorkItems) GetFilteredWorkItems(_ context.Context, q service.WorkItemQuery) (service.WorkItemPage, error) {
	f.lastQuery = q
	return f.page, f.err
}

func (f *fakeWorkItems) GetAllFilteredUnpaged(_ context.Context, q service.WorkItemQuery) ([]model.WorkItem, error) {
	f.lastQuery = q
	return f.items, f.err
}

func (f *fakeWorkItems) GetDivisionName(context.Context, int) (string, error) {
	return "Design", f.err
}

func (f *fakeWorkItems) GetExecutors(context.Context, int) ([]string, error) {
	return []string{"Ivan", "Petr"}, f.err
}

func (f *fakeWorkItems) GetApprovers(context.Context, int) ([]string, error) {
	return []string{"Olga"}, f.err
}

func (f *fakeWorkItems) ClearCache(divisionID int) {
	f.cleared = append(f.cleared, divisionID)
}

type fakeRequests struct {
	created   service.CreateRequestDTO
	actor     string
	status    string
	err       error
	requestID uuid.UUID
}

func (f *fakeRequests) CreateRequest(_ context.Context, req service.CreateRequestDTO) (model.Request, error) {
	f.created = req
	return model.Request{ID: f.requestID, Sender: req.Sender, Status: model.RequestPending}, f.err
}

func (f *fakeRequests) GetRequestsByDocument(_ context.Context, doc string) ([]model.Request, error) {
	return []model.Request{{ID: f.requestID, WorkDocumentNumber: doc}}, f.err
}

func (f *fakeRequests) GetPendingRequestsByReceiver(_ context.Context, receiver string) ([]model.Request, error) {
	f.actor = receiver
	return []model.Request{}, f.err
}

func (f *fakeRequests) SetRequestStatus(_ context.Context, _ string, status, actor string) (model.Request, error) {
	f.status, f.actor = status, actor
	return model.Request{ID: f.requestID, Status: status, IsDone: true}, f.err
}

func (f *fakeRequests) UpdateRequest(_ context.Context, _ string, _ service.UpdateRequestDTO, actor string) (model.Request, error) {
	f.actor = actor
	return model.Request{ID: f.requestID}, f.err
}

func (f *fakeRequests) DeleteRequest(_ context.Context, _ string, actor string) error {
	f.actor = actor
	return f.err
}

func authenticator() *middleware.Authenticator {
	return middleware.NewAuthenticator(secret)
}
