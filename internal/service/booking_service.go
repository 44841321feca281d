// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"know-law-go/internal/model"
	"know-law-go/internal/repository"
	"know-law-go/pkg/kafka"
	"know-law-go/pkg/log"
	"know-law-go/pkg/tasks"
)

// dateLayout 是预约日期的格式。
const dateLayout = "2006-01-02"

// BookingRequest 是创建预约的入参。
type BookingRequest struct {
	LawyerID        string `json:"lawyerId"`
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	ClientPhone     string `json:"clientPhone"`
	AppointmentDate string `json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string `json:"appointmentTime"` // HH:MM
	CaseDescription string `json:"caseDescription"`
}

// BookingService 接口定义了律师预约相关的业务操作。
// Process 实现 kafka.TaskProcessor：确认任务消费成功后把预约置为 confirmed。
type BookingService interface {
	Create(ctx context.Context, owner model.OwnerRef, req BookingRequest) (*model.Booking, error)
	List(ctx context.Context, owner model.OwnerRef) ([]model.Booking, error)
	Process(ctx context.Context, task tasks.BookingConfirmationTask) error
}

type bookingService struct {
	repo repository.BookingRepository
}

// NewBookingService 创建一个新的 BookingService 实例。
func NewBookingService(repo repository.BookingRepository) BookingService {
	return &bookingService{repo: repo}
}

// Create 创建一条预约记录。
// 校验必填字段与日期（不早于今天），按 ID 快照律师姓名与专长，
// 初始状态为 pending，随后投递异步确认任务。投递失败只记录日志，
// 预约本身已成功，记录停留在 pending 状态。
func (s *bookingService) Create(ctx context.Context, owner model.OwnerRef, req BookingRequest) (*model.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	appointmentDate, err := time.Parse(dateLayout, req.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: 预约日期格式应为 YYYY-MM-DD", ErrValidation)
	}
	today, _ := time.Parse(dateLayout, time.Now().Format(dateLayout))
	if appointmentDate.Before(today) {
		return nil, ErrPastDate
	}

	lawyer := findLawyer(req.LawyerID)
	if lawyer == nil {
		return nil, ErrUnknownLawyer
	}

	booking := &model.Booking{
		OwnerID:         owner.String(),
		LawyerID:        lawyer.ID,
		LawyerName:      lawyer.Name,
		LawyerSpecialty: lawyer.Specialty,
		ClientName:      strings.TrimSpace(req.ClientName),
		ClientEmail:     strings.TrimSpace(req.ClientEmail),
		ClientPhone:     strings.TrimSpace(req.ClientPhone),
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		CaseDescription: strings.TrimSpace(req.CaseDescription),
		Status:          model.BookingStatusPending,
	}
	if err := s.repo.Create(booking); err != nil {
		return nil, err
	}

	task := tasks.BookingConfirmationTask{
		BookingID:   booking.ID,
		OwnerID:     booking.OwnerID,
		LawyerID:    booking.LawyerID,
		ClientEmail: booking.ClientEmail,
	}
	if err := kafka.ProduceBookingTask(task); err != nil {
		log.Errorf("[BookingService] 投递预约确认任务失败, bookingID: %d, error: %v", booking.ID, err)
	}

	return booking, nil
}

// List 返回调用方的全部预约记录。
func (s *bookingService) List(ctx context.Context, owner model.OwnerRef) ([]model.Booking, error) {
	return s.repo.FindByOwner(owner.String())
}

// Process 消费一条预约确认任务，把对应预约置为 confirmed。
// 返回错误时消费者不提交 offset，任务会被重投。
func (s *bookingService) Process(ctx context.Context, task tasks.BookingConfirmationTask) error {
	if err := s.repo.UpdateStatus(task.BookingID, model.BookingStatusConfirmed); err != nil {
		return fmt.Errorf("failed to confirm booking %d: %w", task.BookingID, err)
	}
	log.Infof("[BookingService] 预约已确认, bookingID: %d, clientEmail: %s", task.BookingID, task.ClientEmail)
	return nil
}

// validateBookingRequest 校验预约请求的必填字段。
func validateBookingRequest(req BookingRequest) error {
	if strings.TrimSpace(req.LawyerID) == "" ||
		strings.TrimSpace(req.ClientName) == "" ||
		strings.TrimSpace(req.ClientEmail) == "" ||
		strings.TrimSpace(req.ClientPhone) == "" ||
		strings.TrimSpace(req.AppointmentDate) == "" ||
		strings.TrimSpace(req.AppointmentTime) == "" {
		return fmt.Errorf("%w: 预约信息不完整", ErrValidation)
	}
	return nil
}
