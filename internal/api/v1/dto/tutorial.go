package dto

import "tutorials/internal/model"

// TutorialDTO is the wire representation of a tutorial, used for both requests and responses.
// ID is ignored on create and update.
type TutorialDTO struct {
	ID          *int64  `json:"id"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

// ErrorResponseDTO is returned for rejected requests (400 class). Server faults carry no body.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}

// FromModel maps a stored tutorial to its wire form
func FromModel(t model.Tutorial) TutorialDTO {
	out := TutorialDTO{Title: t.Title}
	if t.ID != 0 {
		id := t.ID
		out.ID = &id
	}
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	return out
}

// FromModels maps tutorials element-wise, preserving order. The result is never nil.
func FromModels(ts []model.Tutorial) []TutorialDTO {
	out := make([]TutorialDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromModel(t))
	}
	return out
}

// ToModel maps a wire tutorial to the storage model. A nil DTO maps to nil.
func ToModel(d *TutorialDTO) *model.Tutorial {
	if d == nil {
		return nil
	}
	t := &model.Tutorial{Title: d.Title}
	if d.ID != nil {
		t.ID = *d.ID
	}
	if d.Description != nil {
		desc := *d.Description
		t.Description = &desc
	}
	return t
}
