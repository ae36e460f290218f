package service

import (
	"net/http"
	"strings"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
)

func (h *Handler) CreateSymbol(c *gin.Context) {
	var p models.SymbolParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}
	if strings.TrimSpace(p.Symbol) == "" || strings.TrimSpace(p.Interval) == "" {
		badRequest(c, "Missing required fields")
		return
	}

	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "api.create-symbol")
	span.SetTag("symbol", p.Symbol)
	defer span.Finish()

	// ждём конца прогрева, но фид живёт дольше запроса
	m, err := h.registry.Register(ctx, p)
	if err != nil {
		span.SetTag("error", true)
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"symbol": m.Symbol(),
		"inLong": m.InLong(),
	})
}

func (h *Handler) ListSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

func (h *Handler) DeleteSymbol(c *gin.Context) {
	key := helper.NormSymbol(c.Param("symbol"))
	if !h.registry.Unregister(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symbol not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Symbol removed successfully",
		"symbol":  key,
	})
}

func (h *Handler) PatchStatus(c *gin.Context) {
	var patch models.StatusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}
	s, err := h.registry.UpdateStatus(c.Param("symbol"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) PatchSymbolRsiConfig(c *gin.Context) {
	var patch models.RsiConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}
	s, err := h.registry.UpdateRsiConfig(c.Request.Context(), c.Param("symbol"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
