package service

import (
	"net/http"

	"rsi_bot/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetRsiConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Defaults())
}

// PatchRsiConfig - только для новых мониторов.
func (h *Handler) PatchRsiConfig(c *gin.Context) {
	var patch models.RsiConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}
	cfg, err := h.registry.PatchDefaults(patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
