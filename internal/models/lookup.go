package models

import "time"

// Lookup is the shape shared by the reference tables recipes point at.
type Lookup struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
}

// LookupFields gives generic code access to the embedded Lookup.
func (l *Lookup) LookupFields() *Lookup {
	return l
}

type Classification struct {
	Lookup
}

func (Classification) TableName() string {
	return "classifications"
}

type Source struct {
	Lookup
}

func (Source) TableName() string {
	return "sources"
}

type Meal struct {
	Lookup
}

func (Meal) TableName() string {
	return "meals"
}

type Course struct {
	Lookup
}

func (Course) TableName() string {
	return "courses"
}

type Preparation struct {
	Lookup
}

func (Preparation) TableName() string {
	return "preparations"
}
