package claims

import (
	"context"
	"io"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// Predictor returns the predicted outcome of a warranty claim.
type Predictor interface {
	Predict(ctx context.Context, claim WarrantyClaim) (Prediction, error)
}

// Extractor reads a warranty claim out of a scanned document image.
type Extractor interface {
	Extract(ctx context.Context, filename string, document io.Reader) (WarrantyClaim, error)
}

// Assistant answers natural language questions about the claims data.
type Assistant interface {
	Ask(ctx context.Context, prompt string) (Answer, error)
	SmartTable(ctx context.Context, prompt string) (Table, error)
}

// Client is a convenience union for backends that implement every call.
type Client interface {
	dashboard.ClaimsRepository
	Predictor
	Extractor
	Assistant
}
