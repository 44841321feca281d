// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"
	"know-law-go/internal/model"
)

// BookingRepository 接口定义了预约记录的持久化操作。
type BookingRepository interface {
	Create(booking *model.Booking) error
	FindByOwner(ownerID string) ([]model.Booking, error)
	FindByID(bookingID uint) (*model.Booking, error)
	UpdateStatus(bookingID uint, status string) error
}

// bookingRepository 是 BookingRepository 接口的 GORM 实现。
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建一个新的 BookingRepository 实例。
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create 在数据库中创建一条预约记录。
func (r *bookingRepository) Create(booking *model.Booking) error {
	return r.db.Create(booking).Error
}

// FindByOwner 返回归属者的全部预约，按预约日期、时间降序排列。
func (r *bookingRepository) FindByOwner(ownerID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&bookings).Error
	return bookings, err
}

// FindByID 按 ID 查找一条预约记录。
func (r *bookingRepository) FindByID(bookingID uint) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.First(&booking, bookingID).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus 更新预约状态。
func (r *bookingRepository) UpdateStatus(bookingID uint, status string) error {
	return r.db.Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}
