package users

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"helphive/core"
	"helphive/utils"
)

// Handler exposes the core engine over HTTP for regular accounts.
type Handler struct {
	Core *core.Service
}

func NewHandler(svc *core.Service) *Handler {
	return &Handler{Core: svc}
}

func writeErr(w http.ResponseWriter, err error) {
	utils.WriteJSON(w, core.HTTPStatus(err), utils.APIResponse{
		Success: false,
		Message: core.Message(err),
	})
}

func pathID(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func authedUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return 0, false
	}
	return uid, true
}
