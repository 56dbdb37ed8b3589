package interfaces

import "context"

// AnalyticsRepository reads precomputed aggregation views. Rows are returned
// as a JSON array, or a JSON object for single-row views.
type AnalyticsRepository interface {
	LoadView(ctx context.Context, name string) ([]byte, error)
	PutView(ctx context.Context, name string, rows []byte) error
}
