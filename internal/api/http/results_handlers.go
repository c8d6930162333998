package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/lumina-learn/lumina/internal/auth/middleware"
	"github.com/lumina-learn/lumina/internal/evaluation"
	"github.com/lumina-learn/lumina/internal/rbac"
)

// GET /results?limit=50&offset=0 returns the caller's results, newest first.
func ListResultsHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		list, err := svc.Results(r.Context(), sub, limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /results/{resultID} returns an own result, or any result for roles holding
// result:view-all.
func GetResultHandler(svc *evaluation.Service) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Result(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		sub := auth.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if res.UserID != sub && !checker.Has(role, "result:view-all") {
			// Do not reveal that the result exists.
			http.Error(w, evaluation.ErrResultNotFound.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
