// Package payment wraps the external payment collaborator. The
// finalizer never talks to Stripe directly: it reacts to the
// confirmation or failure the client relays after completing the
// intent created here.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/rafflehq/raffle-api/internal/config"
)

type StripeProvider struct {
	api      *client.API
	currency string
}

func NewStripeProvider(conf *config.StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(conf.Key, nil)

	return &StripeProvider{
		api:      api,
		currency: conf.Currency,
	}
}

// CreateIntent opens a payment intent for the given amount in minor
// currency units and returns its id, which becomes the entry's payment
// reference.
func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, entryReference string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"entry_reference": entryReference,
			},
		},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(p.currency),
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("p.api.PaymentIntents.New -> %w", err)
	}

	return intent.ID, nil
}
