package controllers

import (
	"net/http"
	"strings"

	"github.com/afkahka/kfccfk/api/responses"
	"github.com/afkahka/kfccfk/api/validators"
	membershipsvc "github.com/afkahka/kfccfk/internal/membership"
	pkgerrors "github.com/afkahka/kfccfk/pkg/errors"
	"github.com/afkahka/kfccfk/pkg/logger"
)

// ListMemberLevels serves the tier reference table.
func ListMemberLevels(svc *membershipsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
			return
		}

		levels, err := svc.ListLevels(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list member levels"))
			return
		}
		responses.WriteSuccess(w, levels)
	}
}

// ListLevelRights serves the benefits of one tier. The main_page query flag
// narrows the response to home-page benefits.
func ListLevelRights(svc *membershipsvc.RightsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rights service unavailable"))
			return
		}

		levelType, err := validators.ParseID(r, "levelType")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mainPageOnly := strings.EqualFold(r.URL.Query().Get("main_page"), "true") ||
			r.URL.Query().Get("main_page") == "1"

		var rights []membershipsvc.LevelRight
		if mainPageOnly {
			rights, err = svc.MainPageRights(r.Context(), int(levelType))
		} else {
			rights, err = svc.RightsForLevel(r.Context(), int(levelType))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rights)
	}
}
