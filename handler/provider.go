package handler

import (
	"net/http"

	"github.com/Mustafabeshara/Dashboard2-sub006/service"
	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	invoker *service.Invoker
}

func NewProviderHandler(invoker *service.Invoker) *ProviderHandler {
	return &ProviderHandler{invoker: invoker}
}

// GetStatus reports configuration and rate-limit state for every provider
func (h *ProviderHandler) GetStatus(c *gin.Context) {
	providers := make([]gin.H, 0)
	for _, p := range h.invoker.Providers() {
		status := p.RateLimitStatus()
		providers = append(providers, gin.H{
			"name":             p.Name(),
			"configured":       p.IsConfigured(),
			"available":        status.Available,
			"minute_remaining": status.MinuteRemaining,
			"day_remaining":    status.DayRemaining,
		})
	}

	available := make([]string, 0)
	for _, p := range h.invoker.AvailableProviders() {
		available = append(available, p.Name())
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": providers,
		"available": available,
	})
}
