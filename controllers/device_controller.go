package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/middlewares"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/services"
)

type deviceRegistrar interface {
	RegisterDevice(ctx context.Context, userID uuid.UUID, req services.RegisterDeviceReq) (*models.UserDevice, error)
	SetNotifications(ctx context.Context, userID uuid.UUID, enabled bool) (int64, error)
}

type DeviceController struct {
	log  *logger.Logger
	push deviceRegistrar
}

func NewDeviceController(log *logger.Logger, push deviceRegistrar) *DeviceController {
	return &DeviceController{log: log, push: push}
}

func (dc *DeviceController) Register(c *gin.Context) {
	var req services.RegisterDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	dev, err := dc.push.RegisterDevice(c.Request.Context(), middlewares.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint_arn": dev.EndpointARN})
}

type toggleNotificationsRequest struct {
	Enabled bool `json:"enabled"`
}

func (dc *DeviceController) ToggleNotifications(c *gin.Context) {
	var req toggleNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	n, err := dc.push.SetNotifications(c.Request.Context(), middlewares.CurrentUser(c).ID, req.Enabled)
	if err != nil {
		respondError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled, "devices": n})
}
