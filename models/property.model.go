package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Property listing states. New listings start pending until an admin approves.
const (
	PropertyStatusPending  = "pending"
	PropertyStatusApproved = "approved"
)

// Address is a property's location for display and filtering.
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipcode" json:"zipcode"`
	Country string `bson:"country" json:"country"`
}

// PropertyImage is a picture stored in the image service.
type PropertyImage struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`
}

// Property represents a listing put up by a seller.
type Property struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"` // e.g. "residential", "commercial", "industrial", "land"
	Address     Address            `bson:"address" json:"address"`
	Size        float64            `bson:"size" json:"size"`
	Bedrooms    int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int                `bson:"bathrooms" json:"bathrooms"`
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status" json:"status"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	Pictures    []PropertyImage    `bson:"pictures" json:"pictures"`
	ContactInfo string             `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
