package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(log), gin.Recovery())

	router.GET("/", h.index)
	router.GET("/data", h.getData)
	router.GET("/get_ad_token", h.getAdToken)
	router.POST("/webhook/:token", h.handleWebhook)

	return router
}
