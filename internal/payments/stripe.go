package payments

import (
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Gateway is the slice of the payment provider the handlers need: open a
// hosted checkout session, and fetch it back after the redirect. Keeping it
// an interface lets reconciliation be tested against a fake provider.
type Gateway interface {
	CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	RetrieveSession(sessionID string) (*stripe.CheckoutSession, error)
}

// StripeGateway talks to the real Stripe API.
type StripeGateway struct{}

// NewStripeGateway sets the package-level API key and returns the gateway.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s, err := session.New(params)
	if err != nil {
		return nil, providerError(err)
	}
	return s, nil
}

// RetrieveSession fetches the finalized session with line items and the
// underlying product expanded. The product sub-object is not guaranteed to
// be a full record unless explicitly expanded, which is why the caller has
// a fallback chain for the item name.
func (g *StripeGateway) RetrieveSession(sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")
	params.AddExpand("customer")

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, providerError(err)
	}
	return s, nil
}

// providerError unwraps Stripe's structured error into its human message so
// handlers can pass it through without leaking the full API payload.
func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return errors.New(stripeErr.Msg)
	}
	return err
}
