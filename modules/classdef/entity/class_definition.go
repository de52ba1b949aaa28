package entity

import (
	"studio-api/core/entity"
)

// ClassDefinition is immutable reference data describing a class offering
// (e.g. "Strength Basics"). Schedules point at it; it carries the defaults
// a new schedule is seeded with.
type ClassDefinition struct {
	Name                   string  `db:"name" json:"name"`
	Slug                   string  `db:"slug" json:"slug"`
	Category               string  `db:"category" json:"category"`
	DefaultDurationMinutes int     `db:"default_duration_minutes" json:"default_duration_minutes"`
	Color                  string  `db:"color" json:"color"`
	HasWaitlist            bool    `db:"has_waitlist" json:"has_waitlist"`
	Description            *string `db:"description" json:"description,omitempty"`
	entity.BaseEntity
}
