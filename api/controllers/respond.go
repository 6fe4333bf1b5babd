package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// respond records the action outcome and writes the result envelope.
func respond[T any](w http.ResponseWriter, r *http.Request, logg *logger.Logger, m *metrics.ActionMetrics, name string, start time.Time, res action.Result[T]) {
	outcome := metrics.OutcomeSuccess
	switch {
	case res.IsRedirect():
		outcome = metrics.OutcomeRedirect
	case res.Failed():
		outcome = metrics.OutcomeError
	}
	m.Observe(name, outcome, time.Since(start))
	responses.WriteResult(r.Context(), logg, w, res)
}
