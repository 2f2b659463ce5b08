package model

// City is immutable reference data seeded by the migration tool.
type City struct {
	ID     string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name   string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Region string `json:"region" bson:"region" validate:"required,min=2,max=100"`
}
