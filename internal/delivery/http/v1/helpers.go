package v1

import (
	"context"
	"net/http"
	"strings"

	"marketplace-backend/internal/delivery/http/middleware"
	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/utils"
)

// Executor runs one workflow action; *workflow.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, a domain.Action) (*domain.Transition, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func currentUser(r *http.Request) (*domain.User, error) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		return nil, apperr.UnauthorizedErr("Vui lòng đăng nhập")
	}
	return u, nil
}

// writeEntity renders a versioned entity with its ETag.
func writeEntity(w http.ResponseWriter, status int, message string, content interface{}, version int64) {
	w.Header().Set("ETag", utils.ETag(version))
	utils.WriteSuccess(w, status, message, content, nil)
}

// writePage renders a list with its pagination block in meta.
func writePage(w http.ResponseWriter, content interface{}, p domain.Pagination) {
	utils.WriteSuccess(w, http.StatusOK, "", content, p)
}

// runAction stamps the actor and If-Match version on a, executes it and
// writes the transition.
func runAction(w http.ResponseWriter, r *http.Request, ex Executor, a domain.Action) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	a.ActorID = user.ID
	a.ActorRole = user.Role
	if a.ExpectedVersion == nil {
		v, err := utils.ParseIfMatch(r)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		a.ExpectedVersion = v
	}

	tr, err := ex.Execute(r.Context(), a)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeEntity(w, http.StatusOK, workflow.SuccessMessage(tr.Entity, tr.Action), tr, tr.Version)
}

// reasonBody is the optional JSON body of reject/ban/cancel endpoints.
type reasonBody struct {
	Reason string `json:"reason"`
}

// decodeOptional decodes a JSON body when there is one.
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return utils.DecodeJSON(r, v)
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes", "asc":
		return true
	}
	return false
}
