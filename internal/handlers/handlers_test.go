package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameServiceStub backs the frame handler with one in-memory frame,
// enforcing the same owner semantics as the real service.
type frameServiceStub struct {
	frame    *models.Frame
	gotEmail string
}

func (s *frameServiceStub) Create(_ context.Context, userEmail string) (*models.Frame, error) {
	return s.frame, nil
}

func (s *frameServiceStub) Get(_ context.Context, frameID uuid.UUID) (*models.Frame, error) {
	return s.frame, nil
}

func (s *frameServiceStub) ListForUser(_ context.Context, userEmail string) ([]models.Frame, error) {
	return []models.Frame{*s.frame}, nil
}

func (s *frameServiceStub) SetLocked(_ context.Context, frameID uuid.UUID, userEmail string, locked bool) error {
	s.gotEmail = userEmail
	if userEmail != s.frame.UserEmail {
		return models.NewNotFoundError("frame", frameID.String())
	}
	s.frame.Locked = locked
	return nil
}

func (s *frameServiceStub) AddShard(_ context.Context, frameID uuid.UUID, userEmail string, shard models.Pointer) (*models.Frame, error) {
	s.gotEmail = userEmail
	if userEmail != s.frame.UserEmail {
		return nil, models.NewNotFoundError("frame", frameID.String())
	}
	s.frame.Shards = append(s.frame.Shards, shard)
	return s.frame, nil
}

func frameRouter(stub *frameServiceStub, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("email", email)
	})

	h := NewFrameHandler(stub)
	router.PUT("/frames/:frameID/lock", h.SetLocked)
	router.POST("/frames/:frameID/shards", h.AddShard)
	return router
}

func TestFrameHandler_AddShard_Ownership(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		wantStatus int
	}{
		{
			name:       "owner stages a shard",
			caller:     "alice@example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "other user cannot stage into a foreign frame",
			caller:     "mallory@example.com",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &frameServiceStub{frame: &models.Frame{
				ID:        uuid.New(),
				UserEmail: "alice@example.com",
			}}
			router := frameRouter(stub, tt.caller)

			body := `{"index": 0, "hash": "abc", "size": 1048576}`
			req := httptest.NewRequest(http.MethodPost, "/frames/"+stub.frame.ID.String()+"/shards", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.caller, stub.gotEmail, "handler must pass the authenticated email")
			if tt.wantStatus == http.StatusNotFound {
				assert.Empty(t, stub.frame.Shards, "foreign frame must not be mutated")
			}
		})
	}
}

func TestFrameHandler_SetLocked_Ownership(t *testing.T) {
	stub := &frameServiceStub{frame: &models.Frame{
		ID:        uuid.New(),
		UserEmail: "alice@example.com",
	}}
	router := frameRouter(stub, "mallory@example.com")

	req := httptest.NewRequest(http.MethodPut, "/frames/"+stub.frame.ID.String()+"/lock", strings.NewReader(`{"locked": true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, stub.frame.Locked, "foreign frame must stay unlocked")
}

func bindJSON(t *testing.T, body string, obj any) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(obj)
}

func TestRecordPointsRequest_Binding(t *testing.T) {
	var req RecordPointsRequest
	require.NoError(t, bindJSON(t, `{"points": 0}`, &req), "zero adjustment is a valid report")
	require.NotNil(t, req.Points)
	assert.Equal(t, 0, *req.Points)

	var missing RecordPointsRequest
	assert.Error(t, bindJSON(t, `{}`, &missing))
}

func TestRecordTransferRequest_Binding(t *testing.T) {
	var req RecordTransferRequest
	require.NoError(t, bindJSON(t, `{"direction": "upload", "bytes": 0}`, &req), "zero-byte report is valid")
	require.NotNil(t, req.Bytes)
	assert.Equal(t, int64(0), *req.Bytes)

	var missing RecordTransferRequest
	assert.Error(t, bindJSON(t, `{"direction": "upload"}`, &missing))
}
