package interfaces

import "context"

// PriceClient fetches the current market price for a symbol from one
// external source. Each asset kind (fund, stock, gold, crypto) has its own
// implementation.
type PriceClient interface {
	// FetchPrice returns the current price in VND for the given symbol.
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// GeminiClient generates text with the Google Gemini API.
type GeminiClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
