// Package model 包含了应用的数据模型定义。
package model

import "time"

// 预约状态常量。创建时为 pending，确认任务消费成功后置为 confirmed。
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
)

// Booking 对应于数据库中的 'bookings' 表。
// 律师姓名与专长在预约时冗余快照，后续目录变更不影响既有记录。
type Booking struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID         string    `gorm:"type:varchar(32);index;not null" json:"ownerId"`
	LawyerID        string    `gorm:"type:varchar(32);not null" json:"lawyerId"`
	LawyerName      string    `gorm:"type:varchar(100);not null" json:"lawyerName"`
	LawyerSpecialty string    `gorm:"type:varchar(100);not null" json:"lawyerSpecialty"`
	ClientName      string    `gorm:"type:varchar(100);not null" json:"clientName"`
	ClientEmail     string    `gorm:"type:varchar(255);not null" json:"clientEmail"`
	ClientPhone     string    `gorm:"type:varchar(32);not null" json:"clientPhone"`
	AppointmentDate string    `gorm:"type:varchar(10);not null" json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string    `gorm:"type:varchar(5);not null" json:"appointmentTime"`  // HH:MM
	CaseDescription string    `gorm:"type:text" json:"caseDescription"`
	Status          string    `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Booking) TableName() string {
	return "bookings"
}

// Lawyer 是静态律师目录中的一条记录。目录数据不落库。
type Lawyer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Languages string `json:"languages"`
}
