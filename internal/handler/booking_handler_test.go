package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"know-law-go/internal/model"
	"know-law-go/internal/service"
	"know-law-go/pkg/tasks"
)

// stubBookingService 是 service.BookingService 的测试替身。
type stubBookingService struct {
	err     error
	booking *model.Booking
}

func (s *stubBookingService) Create(ctx context.Context, owner model.OwnerRef, req service.BookingRequest) (*model.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) List(ctx context.Context, owner model.OwnerRef) ([]model.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.booking == nil {
		return nil, nil
	}
	return []model.Booking{*s.booking}, nil
}

func (s *stubBookingService) Process(ctx context.Context, task tasks.BookingConfirmationTask) error {
	return s.err
}

func newBookingRouter(svc service.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(injectIdentity(model.RegisteredOwner(1)))
	h := NewBookingHandler(svc)
	router.POST("/booking", h.Create)
	router.GET("/bookings", h.List)
	router.GET("/lawyers", h.Lawyers)
	return router
}

func TestBookingEndpointSuccess(t *testing.T) {
	svc := &stubBookingService{booking: &model.Booking{
		ID:         1,
		LawyerName: "Sarah Al-Mansouri",
		Status:     model.BookingStatusPending,
	}}
	router := newBookingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/booking",
		strings.NewReader(`{"lawyerId":"lw-001","clientName":"Alice","clientEmail":"a@b.com","clientPhone":"0501234567","appointmentDate":"2027-01-15","appointmentTime":"14:30"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["booking"])
}

func TestBookingEndpointPastDateIs400(t *testing.T) {
	router := newBookingRouter(&stubBookingService{err: service.ErrPastDate})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/booking",
		strings.NewReader(`{"lawyerId":"lw-001","appointmentDate":"2020-01-01"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestBookingEndpointUnknownLawyerIs400(t *testing.T) {
	router := newBookingRouter(&stubBookingService{err: service.ErrUnknownLawyer})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"lawyerId":"lw-999"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLawyersEndpoint(t *testing.T) {
	router := newBookingRouter(&stubBookingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/lawyers", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	lawyers, ok := body["lawyers"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, lawyers)
}
