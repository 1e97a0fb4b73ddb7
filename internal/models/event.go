package models

import "time"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=100"`
	Slug        string    `json:"slug" validate:"required"`
	Description string    `json:"description" validate:"required,max=1000"`
	Overview    string    `json:"overview" validate:"required,max=500"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        string    `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"min=1"`
	Organizer   string    `json:"organizer" validate:"required"`
	Tags        []string  `json:"tags" validate:"min=1"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
