package controllers

import (
	"net/http"

	"storefront-backend/api/responses"
	"storefront-backend/internal/ledger"
	pkgerrors "storefront-backend/pkg/errors"
	"storefront-backend/pkg/logger"
)

// ListSales returns the sales history, newest first.
func ListSales(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		sales, err := svc.ListSales(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sales == nil {
			sales = []ledger.SaleSummary{}
		}
		responses.WriteSuccess(w, sales)
	}
}
