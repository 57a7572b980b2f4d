package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSymbol means the provider could not resolve the ticker.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNoData means the provider answered with an empty result.
	ErrNoData = errors.New("no data returned")
)

// ProviderError wraps every failure at the provider boundary.
type ProviderError struct {
	Provider string
	Symbol   string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Provider, e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err came from a provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

func providerErr(provider, symbol, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Symbol: symbol, Op: op, Err: err}
}
