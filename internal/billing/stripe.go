// Package billing provisions payment-provider state for users. The web
// backend only ever creates customers; subscriptions live elsewhere.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// CustomerProvisioner creates a billing customer for a new user and
// returns its id. A nil provisioner disables billing entirely.
type CustomerProvisioner interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
}

type StripeProvisioner struct {
	api *client.API
}

func NewStripeProvisioner(secretKey string) *StripeProvisioner {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvisioner{api: api}
}

func (p *StripeProvisioner) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}
