package models

import "time"

// Base contains the fields the document store assigns to every record
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID returns the record identifier.
func (b *Base) GetID() string { return b.ID }

// SetID sets the record identifier.
func (b *Base) SetID(id string) { b.ID = id }

// GetCreatedAt returns the creation timestamp.
func (b *Base) GetCreatedAt() time.Time { return b.CreatedAt }

// SetCreatedAt sets the creation timestamp.
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }

// SetUpdatedAt sets the last-update timestamp.
func (b *Base) SetUpdatedAt(t time.Time) { b.UpdatedAt = t }

// baseField resolves the fields shared by every record.
func (b *Base) baseField(name string) (any, bool) {
	switch name {
	case "id":
		return b.ID, true
	case "createdAt":
		return b.CreatedAt, true
	case "updatedAt":
		return b.UpdatedAt, true
	}
	return nil, false
}
