package auctionhandler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"adbidgo/internal/http/httpx"
	"adbidgo/internal/http/identity"
	"adbidgo/internal/services/auction"
)

var (
	errInvalidID    = errors.New("id must be a positive integer")
	errInvalidPrice = errors.New("price must be a non-negative decimal number")
)

type Handler struct {
	svc auction.IAuctionService
}

func New(svc auction.IAuctionService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/auctions/:id", h.info)
	r.GET("/auctions/:id/minimum-bid", h.minimumBid)
	r.POST("/auctions/:id/bids", h.placeBid)
	r.GET("/auctions/:id/bids", h.listBids)
	r.GET("/auctions/:id/bids/:bidId", h.getBid)
	r.DELETE("/auctions/:id/bids/:bidId", h.withdrawBid)
	r.PATCH("/auctions/:id/close", h.close)
	r.DELETE("/auctions/:id", h.cancel)
}

// @Summary		Get auction details
// @Description	Returns a single auction. The reserve price is only visible to the owner and staff; the current price may be hidden depending on auction settings.
// @Tags			Auctions
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Success		200			{object}	httpx.Response{data=auction.AuctionDTO}
// @Failure		404			{object}	httpx.Response
// @Router			/auctions/{id} [get]
func (h *Handler) info(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	dto, err := h.svc.GetAuction(ginCtx.Request.Context(), auctionID, identity.Actor(ginCtx))
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, dto)
}

// @Summary		Minimum acceptable next bid
// @Description	Returns the lowest price the next bid must have to be accepted.
// @Tags			Bids
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Success		200			{object}	httpx.Response{data=MinimumBidResponse}
// @Failure		404			{object}	httpx.Response
// @Router			/auctions/{id}/minimum-bid [get]
func (h *Handler) minimumBid(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	min, err := h.svc.MinimumNextBid(ginCtx.Request.Context(), auctionID)
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, MinimumBidResponse{MinimumBid: min.StringFixed(2)})
}

// @Summary		Place a bid
// @Description	Places a bid on an active auction. The price must be at least the minimum next bid; bids near the end of the auction extend it.
// @Tags			Bids
// @Param			X-User-ID	header		int				true	"Caller user id"
// @Param			id			path		int				true	"Auction ID"
// @Param			body		body		PlaceBidBody	true	"Bid payload"
// @Success		201			{object}	httpx.Response{data=auction.PlaceBidResult}
// @Failure		400			{object}	httpx.Response
// @Failure		409			{object}	httpx.Response
// @Failure		422			{object}	httpx.Response
// @Router			/auctions/{id}/bids [post]
func (h *Handler) placeBid(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	var body PlaceBidBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		httpx.BadRequest(ginCtx, err)
		return
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsNegative() {
		httpx.BadRequest(ginCtx, errInvalidPrice)
		return
	}

	result, err := h.svc.PlaceBid(ginCtx.Request.Context(), auctionID, identity.Actor(ginCtx), price, body.Comment)
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.Created(ginCtx, result)
}

// @Summary		List bids
// @Description	Returns the active bids of an auction, highest first. Only the auction owner and staff may list bids.
// @Tags			Bids
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Success		200			{object}	httpx.Response{data=[]auction.BidDTO}
// @Failure		403			{object}	httpx.Response
// @Failure		404			{object}	httpx.Response
// @Router			/auctions/{id}/bids [get]
func (h *Handler) listBids(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	bids, err := h.svc.ListBids(ginCtx.Request.Context(), auctionID, identity.Actor(ginCtx))
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, bids)
}

// @Summary		Get a single bid
// @Description	Returns one bid. Visible to the bidder, the auction owner and staff.
// @Tags			Bids
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Param			bidId		path		int	true	"Bid ID"
// @Success		200			{object}	httpx.Response{data=auction.BidDTO}
// @Failure		403			{object}	httpx.Response
// @Failure		404			{object}	httpx.Response
// @Router			/auctions/{id}/bids/{bidId} [get]
func (h *Handler) getBid(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	bidID, ok := pathID(ginCtx, "bidId")
	if !ok {
		return
	}
	dto, err := h.svc.GetBid(ginCtx.Request.Context(), auctionID, bidID, identity.Actor(ginCtx))
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, dto)
}

// @Summary		Withdraw a bid
// @Description	Retracts the caller's own bid. The current highest bid cannot be withdrawn, and withdrawal is only possible while the auction is active.
// @Tags			Bids
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Param			bidId		path		int	true	"Bid ID"
// @Success		200			{object}	httpx.Response
// @Failure		403			{object}	httpx.Response
// @Failure		404			{object}	httpx.Response
// @Failure		409			{object}	httpx.Response
// @Router			/auctions/{id}/bids/{bidId} [delete]
func (h *Handler) withdrawBid(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	bidID, ok := pathID(ginCtx, "bidId")
	if !ok {
		return
	}
	if err := h.svc.WithdrawBid(ginCtx.Request.Context(), auctionID, bidID, identity.Actor(ginCtx)); err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, nil)
}

// @Summary		Close an auction
// @Description	Owner or staff closes an active auction, determining the winner. When the reserve price is unmet the auction closes without a winner.
// @Tags			Auctions
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Success		200			{object}	httpx.Response{data=domain.CloseOutcome}
// @Failure		403			{object}	httpx.Response
// @Failure		404			{object}	httpx.Response
// @Failure		409			{object}	httpx.Response
// @Router			/auctions/{id}/close [patch]
func (h *Handler) close(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	outcome, err := h.svc.CloseAuction(ginCtx.Request.Context(), auctionID, identity.Actor(ginCtx))
	if err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, outcome)
}

// @Summary		Cancel an auction
// @Description	Cancels an active auction without picking a winner. Once bids exist only an admin may cancel.
// @Tags			Auctions
// @Param			X-User-ID	header		int	true	"Caller user id"
// @Param			id			path		int	true	"Auction ID"
// @Success		200			{object}	httpx.Response
// @Failure		403			{object}	httpx.Response
// @Failure		404			{object}	httpx.Response
// @Failure		409			{object}	httpx.Response
// @Router			/auctions/{id} [delete]
func (h *Handler) cancel(ginCtx *gin.Context) {
	auctionID, ok := pathID(ginCtx, "id")
	if !ok {
		return
	}
	if err := h.svc.CancelAuction(ginCtx.Request.Context(), auctionID, identity.Actor(ginCtx)); err != nil {
		httpx.Error(ginCtx, err)
		return
	}
	httpx.OK(ginCtx, nil)
}

func pathID(ginCtx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ginCtx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(ginCtx, errInvalidID)
		return 0, false
	}
	return id, true
}
