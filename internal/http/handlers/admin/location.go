package admin

import (
	"strings"

	"github.com/gaithtours/margin-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListCountries 国家候选列表（规则表单下拉）
func (h *Handler) ListCountries(c *gin.Context) {
	countries, err := h.LocationService.ResolveCountries(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.location_fetch_failed", err)
		return
	}
	response.Success(c, countries)
}

// ListCities 按已选国家返回城市列表，countries 为逗号分隔
func (h *Handler) ListCities(c *gin.Context) {
	countries := splitCSV(c.Query("countries"))
	cities, err := h.LocationService.ResolveCities(c.Request.Context(), countries)
	if err != nil {
		respondError(c, response.CodeInternal, "error.location_fetch_failed", err)
		return
	}
	response.Success(c, cities)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
