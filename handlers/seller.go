package handlers

import (
	"net/http"

	"harvestmap/apperrors"
	"harvestmap/middleware"
	"harvestmap/services/seller"
	"harvestmap/utils"

	"github.com/gin-gonic/gin"
)

type SellerHandler struct {
	Service seller.SellerService
}

func NewSellerHandler(svc seller.SellerService) *SellerHandler {
	return &SellerHandler{Service: svc}
}

// AddSellerHandler handles POST /add_user.
func (h *SellerHandler) AddSellerHandler(c *gin.Context) {
	logger := getLogger(c)

	var req seller.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, apperrors.Validation(apperrors.CodeInvalidBody, "Invalid request body", err))
		return
	}

	s, created, err := h.Service.Register(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	status, message := http.StatusOK, "User updated successfully"
	if created {
		status, message = http.StatusCreated, "User created successfully"
	}
	c.JSON(status, gin.H{"message": message, "seller": s})
}

// GetSellerHandler handles GET /user/:uid.
func (h *SellerHandler) GetSellerHandler(c *gin.Context) {
	s, err := h.Service.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		utils.JSONError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// VerifyAuthHandler handles GET /verify-auth. It runs behind AuthMiddleware,
// so reaching it means the token was accepted.
func (h *SellerHandler) VerifyAuthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "uid": middleware.Principal(c)})
}
