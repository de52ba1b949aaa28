package dto

import (
	"studio-api/modules/classdef/entity"
)

// CreateClassDefinitionRequest for creating reference data
type CreateClassDefinitionRequest struct {
	Name                   string `json:"name" validate:"required"`
	Category               string `json:"category" validate:"required"`
	DefaultDurationMinutes int    `json:"default_duration_minutes" validate:"required,min=5,max=480"`
	Color                  string `json:"color"`
	HasWaitlist            bool   `json:"has_waitlist"`
	Description            string `json:"description"`
}

// UpdateClassDefinitionRequest for editing reference data
type UpdateClassDefinitionRequest struct {
	Name                   string  `json:"name"`
	Category               string  `json:"category"`
	DefaultDurationMinutes int     `json:"default_duration_minutes"`
	Color                  string  `json:"color"`
	HasWaitlist            *bool   `json:"has_waitlist"`
	Description            *string `json:"description"`
}

// ClassDefinitionResponse mirrors the entity for API consumers.
type ClassDefinitionResponse struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Slug                   string `json:"slug"`
	Category               string `json:"category"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
	Color                  string `json:"color"`
	HasWaitlist            bool   `json:"has_waitlist"`
	Description            string `json:"description,omitempty"`
}

func ToClassDefinitionResponse(def *entity.ClassDefinition) *ClassDefinitionResponse {
	resp := &ClassDefinitionResponse{
		ID:                     def.ID,
		Name:                   def.Name,
		Slug:                   def.Slug,
		Category:               def.Category,
		DefaultDurationMinutes: def.DefaultDurationMinutes,
		Color:                  def.Color,
		HasWaitlist:            def.HasWaitlist,
	}
	if def.Description != nil {
		resp.Description = *def.Description
	}
	return resp
}
