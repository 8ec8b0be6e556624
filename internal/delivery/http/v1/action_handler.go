package v1

import (
	"net/http"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/utils"
)

// ActionHandler exposes the workflow engine as one endpoint taking the
// tagged Action body. The per-resource routes are shorthands for it.
type ActionHandler struct {
	engine Executor
}

func NewActionHandler(engine Executor) *ActionHandler {
	return &ActionHandler{engine: engine}
}

// POST /api/v1/admin/actions
func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var a domain.Action
	if err := utils.DecodeJSON(r, &a); err != nil {
		utils.WriteError(w, err)
		return
	}
	runAction(w, r, h.engine, a)
}
