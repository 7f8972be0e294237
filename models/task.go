package models

import (
	"errors"

	"city-game-system/geo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidTaskLocation = errors.New("task coordinates are out of range")
	ErrInvalidTaskRadius   = errors.New("task allowed distance must be positive")
)

// Task is a geolocated point of interest. AllowedDistance is the radius in
// meters a player must be within to complete it.
type Task struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid"`
	Name            string          `json:"name" gorm:"size:255;not null"`
	Description     string          `json:"description" gorm:"type:text"`
	Latitude        decimal.Decimal `json:"latitude" gorm:"type:decimal(10,7);not null"`
	Longitude       decimal.Decimal `json:"longitude" gorm:"type:decimal(10,7);not null"`
	AllowedDistance int             `json:"allowed_distance" gorm:"not null;check:allowed_distance > 0"`

	Timestamps
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	if !geo.ValidCoordinates(t.Lat(), t.Lon()) {
		return ErrInvalidTaskLocation
	}
	if t.AllowedDistance <= 0 {
		return ErrInvalidTaskRadius
	}
	return nil
}

func (t *Task) Lat() float64 {
	f, _ := t.Latitude.Float64()
	return f
}

func (t *Task) Lon() float64 {
	f, _ := t.Longitude.Float64()
	return f
}

// IsWithinReach reports whether the reported position is inside the task's
// allowed radius.
func (t *Task) IsWithinReach(lat, lon float64) bool {
	return geo.IsWithinDistance(t.Lat(), t.Lon(), lat, lon, t.AllowedDistance)
}
