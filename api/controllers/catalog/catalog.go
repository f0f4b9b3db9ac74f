package catalog

import (
	"net/http"
	"strings"

	"github.com/campuseats/campuseats-backend/api/responses"
	"github.com/campuseats/campuseats-backend/api/validators"
	internalcatalog "github.com/campuseats/campuseats-backend/internal/catalog"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/pagination"
)

func Items(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		vendor := strings.TrimSpace(r.URL.Query().Get("vendor"))

		items, err := svc.Items(ctx, vendor, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func Vendors(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		vendors, err := svc.Vendors(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"vendors": vendors})
	}
}

// Search matches item and vendor names against ?q=.
func Search(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Search(ctx, r.URL.Query().Get("q"), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":   result.Items,
			"vendors": result.Vendors,
		})
	}
}
