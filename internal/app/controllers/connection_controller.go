package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/app/services"
	"github.com/uniconnect/backend/internal/middleware"
	"github.com/uniconnect/backend/internal/pkg/helpers"
)

// ConnectionController handles connection request operations
type ConnectionController struct {
	connectionService *services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new connection controller
func NewConnectionController(connectionService *services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
		logger:            logger,
	}
}

// SendRequest sends a connection request
// @Summary Send a connection request
// @Description Creates a pending connection request toward another user. Requires a verified email.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendConnectionRequest true "Recipient and optional message"
// @Success 201 {object} dto.APIResponse{data=dto.ConnectionResponse} "Request sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or self connection"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Email not verified or pair is blocked"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Failure 409 {object} dto.ErrorResponse "Connection already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections [post]
func (c *ConnectionController) SendRequest(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.SendConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	conn, err := c.connectionService.SendRequest(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("requesterID", userID).Int64("recipientID", req.RecipientID).
			Msg("Failed to send connection request")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(conn))
}

// Respond accepts or rejects a pending request
// @Summary Respond to a connection request
// @Description Accepts or rejects a pending request. Only the recipient may respond, and only once.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Param request body dto.RespondConnectionRequest true "accept or reject"
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionResponse} "Request answered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the recipient"
// @Failure 404 {object} dto.ErrorResponse "Connection not found"
// @Failure 409 {object} dto.ErrorResponse "Request already responded to"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/{id}/respond [put]
func (c *ConnectionController) Respond(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	connectionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RespondConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	conn, err := c.connectionService.Respond(ctx.Request.Context(), userID, connectionID, req.Action)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Int64("connectionID", connectionID).
			Str("action", req.Action).Msg("Failed to respond to connection request")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conn))
}

// ListIncoming lists pending requests waiting on the caller
// @Summary List incoming connection requests
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Items per page" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse} "Pending requests"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/requests [get]
func (c *ConnectionController) ListIncoming(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	list, err := c.connectionService.ListIncoming(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// ListSent lists pending requests the caller has sent
// @Summary List sent connection requests
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Items per page" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse} "Sent requests"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/sent [get]
func (c *ConnectionController) ListSent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	list, err := c.connectionService.ListSent(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// ListConnections lists the caller's accepted connections
// @Summary List connections
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Items per page" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse} "Accepted connections"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections [get]
func (c *ConnectionController) ListConnections(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	list, err := c.connectionService.ListConnections(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// StatusWith reports the relationship with one user
// @Summary Connection status with a user
// @Description Reports the relationship between the caller and another user: NONE, PENDING, ACCEPTED, REJECTED or BLOCKED
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user's ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionStatusResponse} "Status"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/status/{userId} [get]
func (c *ConnectionController) StatusWith(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	status, err := c.connectionService.StatusWith(ctx.Request.Context(), userID, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}

// Block blocks another user
// @Summary Block a user
// @Description Marks the connection with another user as blocked, creating one if none exists. Blocked pairs cannot message or reconnect.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User to block"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "User blocked"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID or self block"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/block/{userId} [put]
func (c *ConnectionController) Block(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.connectionService.Block(ctx.Request.Context(), userID, targetID); err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Int64("targetID", targetID).Msg("Failed to block user")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "User blocked"}))
}

// Remove deletes the connection with another user
// @Summary Remove a connection
// @Description Deletes the connection between the caller and another user, closing their message channel
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Connected user's ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Connection removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Connection not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /connections/{userId} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.connectionService.Remove(ctx.Request.Context(), userID, targetID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Connection removed"}))
}
