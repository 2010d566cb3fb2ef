package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type State struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Code      string             `bson:"code,omitempty" json:"code,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StateID   primitive.ObjectID `bson:"state_id" json:"state_id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PaymentMethod is a static catalog entry; the list is fixed at startup.
type PaymentMethod struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{Code: "card", Label: "Credit / Debit Card", Enabled: true},
		{Code: "upi", Label: "UPI", Enabled: true},
		{Code: "netbanking", Label: "Net Banking", Enabled: true},
		{Code: "cash", Label: "Pay at Hotel", Enabled: false},
	}
}

func ValidPaymentMethod(code string) bool {
	for _, m := range PaymentMethods() {
		if m.Code == code && m.Enabled {
			return true
		}
	}
	return false
}
