package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"know-law-go/internal/model"
	"know-law-go/pkg/tasks"
)

// stubBookingRepo 是 BookingRepository 的内存实现。
type stubBookingRepo struct {
	bookings []model.Booking
	nextID   uint
}

func (r *stubBookingRepo) Create(booking *model.Booking) error {
	r.nextID++
	booking.ID = r.nextID
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *stubBookingRepo) FindByOwner(ownerID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range r.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) FindByID(bookingID uint) (*model.Booking, error) {
	for i := range r.bookings {
		if r.bookings[i].ID == bookingID {
			return &r.bookings[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBookingRepo) UpdateStatus(bookingID uint, status string) error {
	for i := range r.bookings {
		if r.bookings[i].ID == bookingID {
			r.bookings[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func validBookingRequest() BookingRequest {
	return BookingRequest{
		LawyerID:        "lw-001",
		ClientName:      "Alice",
		ClientEmail:     "alice@example.com",
		ClientPhone:     "0501234567",
		AppointmentDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		AppointmentTime: "14:30",
		CaseDescription: "Custody consultation",
	}
}

func TestBookingCreateSnapshotsLawyer(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)
	owner := model.RegisteredOwner(1)

	booking, err := s.Create(context.Background(), owner, validBookingRequest())
	require.NoError(t, err)

	assert.Equal(t, "Sarah Al-Mansouri", booking.LawyerName)
	assert.Equal(t, "Family Law", booking.LawyerSpecialty)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, owner.String(), booking.OwnerID)
}

func TestBookingCreateTodayIsAllowed(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	req := validBookingRequest()
	req.AppointmentDate = time.Now().Format("2006-01-02")
	_, err := s.Create(context.Background(), model.GuestOwner(), req)
	assert.NoError(t, err)
}

func TestBookingCreateRejectsPastDate(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	req := validBookingRequest()
	req.AppointmentDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := s.Create(context.Background(), model.GuestOwner(), req)
	assert.ErrorIs(t, err, ErrPastDate)
	// 校验失败不落库
	assert.Empty(t, repo.bookings)
}

func TestBookingCreateRejectsMissingFields(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	req := validBookingRequest()
	req.ClientPhone = "  "
	_, err := s.Create(context.Background(), model.GuestOwner(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingCreateRejectsUnknownLawyer(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	req := validBookingRequest()
	req.LawyerID = "lw-999"
	_, err := s.Create(context.Background(), model.GuestOwner(), req)
	assert.ErrorIs(t, err, ErrUnknownLawyer)
}

func TestBookingListIsOwnerScoped(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	_, err := s.Create(context.Background(), model.RegisteredOwner(1), validBookingRequest())
	require.NoError(t, err)
	_, err = s.Create(context.Background(), model.RegisteredOwner(2), validBookingRequest())
	require.NoError(t, err)

	bookings, err := s.List(context.Background(), model.RegisteredOwner(1))
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "1", bookings[0].OwnerID)
}

func TestBookingProcessConfirms(t *testing.T) {
	repo := &stubBookingRepo{}
	s := NewBookingService(repo)

	booking, err := s.Create(context.Background(), model.RegisteredOwner(1), validBookingRequest())
	require.NoError(t, err)

	err = s.Process(context.Background(), tasks.BookingConfirmationTask{BookingID: booking.ID})
	require.NoError(t, err)

	stored, err := repo.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, stored.Status)
}
