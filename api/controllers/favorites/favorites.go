package favorites

import (
	"net/http"

	"github.com/campuseats/campuseats-backend/api/responses"
	"github.com/campuseats/campuseats-backend/api/validators"
	internalfavorites "github.com/campuseats/campuseats-backend/internal/favorites"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/pagination"
)

// Create records that a customer likes an item.
func Create(svc internalfavorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		var input internalfavorites.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fav, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"favorite_id": fav.ID,
			"item_id":     fav.ItemID,
		})
	}
}

// List returns one page of a customer's favorites.
func List(svc internalfavorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		username, err := validators.PathString(r, "username")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := pagination.ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
				WithDetails(map[string]any{"field": "page"}))
			return
		}

		result, err := svc.List(ctx, username, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"favorites":  result.Favorites,
			"pagination": result.Pagination,
		})
	}
}
