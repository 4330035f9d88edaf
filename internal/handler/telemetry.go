package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// costPerMillionTokens is a rough blended $/M tokens figure for the cost
// estimate in the metrics line.
const costPerMillionTokens = 1.0

// Telemetry seeds a per-request token usage accumulator into the context
// and logs AI usage metrics once the request completes.
func Telemetry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usage := &model.TokenUsage{}
		start := time.Now()

		defer func() {
			in, out := usage.Totals()
			cost := float64(in+out) / 1_000_000.0 * costPerMillionTokens
			slog.Info("ai_metrics",
				"route", r.URL.Path,
				"tokens_in", in,
				"tokens_out", out,
				"cost_est_usd", cost,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()

		next.ServeHTTP(w, r.WithContext(model.ContextWithUsage(r.Context(), usage)))
	})
}
