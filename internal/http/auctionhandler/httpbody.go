package auctionhandler

type PlaceBidBody struct {
	Price   string `json:"price"   binding:"required" example:"1100.00"`
	Comment string `json:"comment" binding:"omitempty,max=500" example:"Cash buyer, can collect this week"`
} // @name PlaceBidRequest

type MinimumBidResponse struct {
	MinimumBid string `json:"minimum_bid" example:"1100.00"`
} // @name MinimumBidResponse
