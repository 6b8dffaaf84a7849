package model

import (
	"time"
)

// ParcelType is reference data; rows are created by migrations or admins.
type ParcelType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Parcel is a shipment registered by an anonymous session.
type Parcel struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Weight       float64   `db:"weight" json:"weight"`
	ContentValue float64   `db:"content_value" json:"content_value"`
	DeliveryCost *float64  `db:"delivery_cost" json:"delivery_cost"`
	TypeID       int64     `db:"type_id" json:"type_id"`
	SessionID    string    `db:"session_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// ParcelRow is a parcel joined with the name of its type.
type ParcelRow struct {
	Parcel
	TypeName string `db:"type_name"`
}

type CreateParcelParams struct {
	ID           string
	Title        string
	Weight       float64
	ContentValue float64
	TypeID       int64
	SessionID    string
}

// ParcelFilter selects parcels of one session. Nil pointers mean "any".
type ParcelFilter struct {
	SessionID       string
	TypeID          *int64
	HasDeliveryCost *bool
	Offset          int
	Limit           int
}
