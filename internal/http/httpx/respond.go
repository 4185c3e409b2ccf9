package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"adbidgo/internal/domain"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  string            `json:"status" example:"success"`
	Code    string            `json:"code,omitempty" example:"bid_too_low"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
} // @name Response

func OK(ginCtx *gin.Context, data any) {
	ginCtx.JSON(http.StatusOK, Response{Status: "success", Data: data})
}

func Created(ginCtx *gin.Context, data any) {
	ginCtx.JSON(http.StatusCreated, Response{Status: "success", Data: data})
}

// BadRequest reports binding/validation failures on the request itself.
func BadRequest(ginCtx *gin.Context, err error) {
	ginCtx.JSON(http.StatusBadRequest, Response{
		Status:  "error",
		Code:    "invalid_request",
		Message: err.Error(),
	})
}

// Unauthorized is used by the identity middleware when no caller identity is
// present on the request.
func Unauthorized(ginCtx *gin.Context) {
	ginCtx.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Status:  "error",
		Code:    "unauthenticated",
		Message: "caller identity is required",
	})
}

// Error maps a service error onto an HTTP status and envelope. Unknown errors
// become opaque 500s; the cause is logged, not leaked.
func Error(ginCtx *gin.Context, err error) {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		ginCtx.JSON(http.StatusUnprocessableEntity, Response{
			Status:  "error",
			Code:    "bid_too_low",
			Message: tooLow.Error(),
			Errors:  map[string]string{"price": tooLow.Error()},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrBidNotFound):
		respondError(ginCtx, http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrForbidden):
		respondError(ginCtx, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, domain.ErrAuctionNotActive):
		respondError(ginCtx, http.StatusConflict, "auction_not_active", err)
	case errors.Is(err, domain.ErrAuctionEnded):
		respondError(ginCtx, http.StatusConflict, "auction_ended", err)
	case errors.Is(err, domain.ErrBidAlreadyWithdrawn):
		respondError(ginCtx, http.StatusConflict, "bid_already_withdrawn", err)
	case errors.Is(err, domain.ErrHighestBidLocked):
		respondError(ginCtx, http.StatusConflict, "highest_bid_locked", err)
	case errors.Is(err, domain.ErrCancelWithBids):
		respondError(ginCtx, http.StatusConflict, "cancel_with_bids", err)
	default:
		zap.L().Error("request_failed",
			zap.String("path", ginCtx.FullPath()),
			zap.Error(err),
		)
		ginCtx.JSON(http.StatusInternalServerError, Response{
			Status:  "error",
			Code:    "internal",
			Message: "internal server error",
		})
	}
}

func respondError(ginCtx *gin.Context, status int, code string, err error) {
	ginCtx.JSON(status, Response{Status: "error", Code: code, Message: err.Error()})
}
