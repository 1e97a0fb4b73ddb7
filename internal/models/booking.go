package models

import "time"

type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId" validate:"required"`
	Slug      string    `json:"slug" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	CreatedAt time.Time `json:"createdAt"`
}
