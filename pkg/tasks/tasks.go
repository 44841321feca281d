// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// BookingConfirmationTask represents the payload of a booking confirmation job.
type BookingConfirmationTask struct {
	BookingID   uint   `json:"booking_id"`
	OwnerID     string `json:"owner_id"`
	LawyerID    string `json:"lawyer_id"`
	ClientEmail string `json:"client_email"`
}
