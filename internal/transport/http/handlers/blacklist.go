package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/repository"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// BlacklistHandler exposes the administrative denial endpoints.
type BlacklistHandler struct {
	blacklist *usecase.BlacklistService
}

// NewBlacklistHandler constructs BlacklistHandler.
func NewBlacklistHandler(blacklist *usecase.BlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklist: blacklist}
}

// BlacklistUser blocks the account named in the path and records the
// offending address.
func (h *BlacklistHandler) BlacklistUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	var req BlacklistUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid blacklist payload"))
		return
	}

	err := h.blacklist.BlacklistUser(c.Request.Context(), userID, req.IP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidIP, Status: http.StatusBadRequest, Message: "invalid ip address"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "blacklisting failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user blacklisted"})
}

// GetEntry returns the blacklist entry for the account named in the path.
func (h *BlacklistHandler) GetEntry(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	entry, err := h.blacklist.GetEntry(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "no blacklist entry for this user"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// BlacklistIP denies a source address at the edge.
func (h *BlacklistHandler) BlacklistIP(c *gin.Context) {
	var req BlacklistIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid blacklist payload"))
		return
	}

	err := h.blacklist.BlacklistIP(c.Request.Context(), req.IP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidIP, Status: http.StatusBadRequest, Message: "invalid ip address"},
		}, http.StatusInternalServerError, "blacklisting failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "ip blacklisted"})
}

// WhitelistIP lifts the denial of a source address.
func (h *BlacklistHandler) WhitelistIP(c *gin.Context) {
	ip := c.Param("ip")
	if ip == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "ip is required"))
		return
	}

	err := h.blacklist.WhitelistIP(c.Request.Context(), ip)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidIP, Status: http.StatusBadRequest, Message: "invalid ip address"},
		}, http.StatusInternalServerError, "whitelisting failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "ip whitelisted"})
}
