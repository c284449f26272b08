package dto

// AddFundRequest is the body of POST /api/funds
type AddFundRequest struct {
	BucketIndex int    `json:"bucket_index"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Current     Number `json:"current"`
	Weight      Number `json:"weight"`
}

// UpdateFundRequest is the body of PUT /api/funds
type UpdateFundRequest struct {
	BucketIndex int    `json:"bucket_index"`
	FundIndex   int    `json:"fund_index"`
	Field       string `json:"field"`
	Value       Number `json:"value"`
}

// PatchFundRequest is the body of PATCH /api/funds; absent fields are left unchanged
type PatchFundRequest struct {
	BucketIndex int     `json:"bucket_index"`
	FundIndex   int     `json:"fund_index"`
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Current     *Number `json:"current,omitempty"`
	Weight      *Number `json:"weight,omitempty"`
}

// DeleteFundRequest is the body of DELETE /api/funds
type DeleteFundRequest struct {
	BucketIndex int `json:"bucket_index"`
	FundIndex   int `json:"fund_index"`
}

// RebalanceRequest is the body of POST /api/rebalance
type RebalanceRequest struct {
	Threshold Number `json:"threshold"`
}
