// Package mock provides test doubles for babel interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/babel"
)

// Interface compliance check.
var _ babel.Provider = (*Provider)(nil)

// Provider is a test double for babel.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req babel.Request) (babel.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req babel.Request) (babel.Stream, error) {
	return p.StreamFn(ctx, req)
}
