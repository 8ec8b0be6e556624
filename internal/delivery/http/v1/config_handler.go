package v1

import (
	"net/http"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/utils"
)

type ConfigHandler struct {
	cache  cache.CacheService
	policy domain.StatusPolicy
}

func NewConfigHandler(c cache.CacheService, policy domain.StatusPolicy) *ConfigHandler {
	return &ConfigHandler{cache: c, policy: policy}
}

const enumsCacheKey = "system:config:enums"

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if val, found := h.cache.Get(enumsCacheKey); found {
		utils.WriteSuccess(w, http.StatusOK, "", val, nil)
		return
	}

	next := make(map[domain.ComboStatus][]domain.ComboStatus, len(domain.ComboStatuses))
	for _, s := range domain.ComboStatuses {
		if n := workflow.NextComboStatuses(s); len(n) > 0 {
			next[s] = n
		}
	}
	response := map[string]interface{}{
		"comboStatuses":    domain.ComboStatuses,
		"comboTransitions": next,
		"identityStatuses": domain.IdentityStatuses,
		"sellerBadges":     []string{domain.BadgePending, domain.BadgeVerified, domain.BadgeRejected, domain.BadgeBanned},
		"withdrawStatuses": domain.WithdrawStatuses,
		"reportStatuses":   domain.ReportStatuses,
		"productStatuses":  domain.ProductStatuses,
		"actionKinds":      domain.ActionKinds,
		"statusPolicy":     h.policy,
	}
	h.cache.Set(enumsCacheKey, response, time.Hour)
	utils.WriteSuccess(w, http.StatusOK, "", response, nil)
}
