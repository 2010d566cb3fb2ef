package models

import (
	"strings"
	"time"
)

// BookingSummary is the display-safe projection of a booking: dates, derived
// price facts and the frozen room snapshot. It never exposes live room state.
type BookingSummary struct {
	ID            string        `json:"id"`
	CheckIn       time.Time     `json:"check_in"`
	CheckOut      time.Time     `json:"check_out"`
	Nights        int           `json:"nights"`
	Guests        Guests        `json:"guests"`
	TotalAmount   float64       `json:"total_amount"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Room          RoomSnapshot  `json:"room"`
}

type Invoice struct {
	InvoiceNumber string        `json:"invoice_number"`
	IssuedAt      time.Time     `json:"issued_at"`
	Guest         *UserSnapshot `json:"guest,omitempty"`
	Room          RoomSnapshot  `json:"room"`
	CheckIn       time.Time     `json:"check_in"`
	CheckOut      time.Time     `json:"check_out"`
	Nights        int           `json:"nights"`
	Subtotal      float64       `json:"subtotal"`
	TaxRate       float64       `json:"tax_rate"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
}

// Summary projects the booking into its display-safe subset. Read-only:
// calling it repeatedly on an unchanged booking yields identical output.
func (b *Booking) Summary() BookingSummary {
	return BookingSummary{
		ID:            b.ID.Hex(),
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Nights:        b.Nights,
		Guests:        b.Guests,
		TotalAmount:   b.TotalAmount,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Room:          b.RoomSnapshot,
	}
}

// GenerateInvoice derives the invoice view of the booking. The invoice number
// is the uppercased last 8 characters of the booking id behind the configured
// prefix; tax rate comes from configuration, not a literal.
func (b *Booking) GenerateInvoice(taxRate float64, prefix string) Invoice {
	id := b.ID.Hex()
	suffix := id
	if len(id) > 8 {
		suffix = id[len(id)-8:]
	}
	tax := b.TotalAmount * taxRate
	return Invoice{
		InvoiceNumber: prefix + strings.ToUpper(suffix),
		IssuedAt:      b.CreatedAt,
		Guest:         b.UserSnapshot,
		Room:          b.RoomSnapshot,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Nights:        b.Nights,
		Subtotal:      b.TotalAmount,
		TaxRate:       taxRate,
		Tax:           tax,
		Total:         b.TotalAmount + tax,
	}
}
