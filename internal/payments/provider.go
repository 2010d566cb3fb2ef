package payments

import "context"

// Intent is the narrow view of an external payment intent the booking core
// relies on. Amounts are minor units (cents); conversion to and from decimal
// currency happens at the reconciliation layer.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
}

// Succeeded reports whether the processor considers the intent captured.
func (i *Intent) Succeeded() bool {
	return i.Status == "succeeded"
}

// Provider is the payment-processor boundary: create an intent before any
// money moves, retrieve it afterwards to learn what was actually captured.
// The processor, not the client, is the source of truth for settled amounts.
type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}
