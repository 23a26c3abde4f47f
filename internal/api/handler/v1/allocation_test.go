package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafflehq/raffle-api/internal/domain"
	"github.com/rafflehq/raffle-api/internal/service"
)

type stubAllocationService struct {
	allocateEntry domain.Entry
	allocateErr   error

	entry      domain.Entry
	entryErr   error
	entries    []domain.Entry
	entriesErr error
}

func (s *stubAllocationService) Allocate(_ context.Context, _, _ uint, _ int, _ []int) (domain.Entry, error) {
	return s.allocateEntry, s.allocateErr
}

func (s *stubAllocationService) GetEntry(_ context.Context, _ uint) (domain.Entry, error) {
	return s.entry, s.entryErr
}

func (s *stubAllocationService) GetUserEntries(_ context.Context, _ uint) ([]domain.Entry, error) {
	return s.entries, s.entriesErr
}

type stubFinalizerService struct {
	confirmEntry domain.Entry
	confirmErr   error
	failEntry    domain.Entry
	failErr      error
}

func (s *stubFinalizerService) ConfirmPayment(_ context.Context, _ uint, _ string) (domain.Entry, error) {
	return s.confirmEntry, s.confirmErr
}

func (s *stubFinalizerService) FailPayment(_ context.Context, _ uint, _ string) (domain.Entry, error) {
	return s.failEntry, s.failErr
}

func newAllocationRouter(svc AllocationService, fSvc FinalizerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewAllocationHandler(svc, fSvc)
	router.POST("/competitions/:competitionID/allocate", handler.HandleAllocateTickets)
	router.POST("/entries/:entryID/confirm", handler.HandleConfirmPayment)
	router.POST("/entries/:entryID/fail", handler.HandleFailPayment)

	return router
}

func TestAllocationHandler_HandleAllocateTickets(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"user_id":1,"ticket_count":2}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"user_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user",
			body:       `{"ticket_count":2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sold out",
			body:       `{"user_id":1,"ticket_count":2}`,
			svcErr:     service.ErrSoldOut,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "allocation exhausted",
			body:       `{"user_id":1,"ticket_count":2}`,
			svcErr:     service.ErrAllocationExhausted,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "limit exceeded",
			body:       `{"user_id":1,"ticket_count":2}`,
			svcErr:     service.ErrLimitExceeded,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "competition closed",
			body:       `{"user_id":1,"ticket_count":2}`,
			svcErr:     service.ErrCompetitionClosed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "competition not found",
			body:       `{"user_id":1,"ticket_count":2}`,
			svcErr:     service.ErrCompetitionNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid selection",
			body:       `{"user_id":1,"ticket_count":2,"preferred_numbers":[3,3]}`,
			svcErr:     service.ErrInvalidSelection,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAllocationService{
				allocateEntry: domain.Entry{ID: 1, SelectedNumbers: []int{1, 2}},
				allocateErr:   tt.svcErr,
			}
			router := newAllocationRouter(svc, &stubFinalizerService{})

			req := httptest.NewRequest(http.MethodPost, "/competitions/1/allocate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestAllocationHandler_HandleAllocateTickets_RendersEntry(t *testing.T) {
	svc := &stubAllocationService{
		allocateEntry: domain.Entry{
			ID:              7,
			Reference:       "ref-123",
			SelectedNumbers: []int{4, 5},
			PaymentStatus:   domain.PaymentPending,
		},
	}
	router := newAllocationRouter(svc, &stubFinalizerService{})

	req := httptest.NewRequest(http.MethodPost, "/competitions/1/allocate", strings.NewReader(`{"user_id":1,"ticket_count":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var got domain.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "ref-123", got.Reference)
	assert.Equal(t, []int{4, 5}, got.SelectedNumbers)
}

func TestAllocationHandler_HandleConfirmPayment(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			wantStatus: http.StatusOK,
		},
		{
			name:       "entry not found",
			svcErr:     service.ErrEntryNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "reservation expired",
			svcErr:     service.ErrReservationExpired,
			wantStatus: http.StatusGone,
		},
		{
			name:       "already finalized",
			svcErr:     service.ErrAlreadyFinalized,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "payment mismatch",
			svcErr:     service.ErrPaymentMismatch,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fSvc := &stubFinalizerService{
				confirmEntry: domain.Entry{ID: 1, PaymentStatus: domain.PaymentCompleted},
				confirmErr:   tt.svcErr,
			}
			router := newAllocationRouter(&stubAllocationService{}, fSvc)

			req := httptest.NewRequest(http.MethodPost, "/entries/1/confirm", strings.NewReader(`{"payment_ref":"pi_123"}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestAllocationHandler_HandleFailPayment(t *testing.T) {
	fSvc := &stubFinalizerService{
		failEntry: domain.Entry{ID: 1, PaymentStatus: domain.PaymentFailed},
	}
	router := newAllocationRouter(&stubAllocationService{}, fSvc)

	req := httptest.NewRequest(http.MethodPost, "/entries/1/fail", strings.NewReader(`{"reason":"card_declined"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var got domain.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
}
