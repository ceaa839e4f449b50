package dto

// GenerateCodesRequest payload for POST /security/codes. Zero values select
// the configured defaults.
type GenerateCodesRequest struct {
	Purpose string `json:"purpose"`
	Length  int    `json:"length,omitempty"`
	Level   string `json:"level,omitempty"`
}

// RedeemCodeRequest payload for POST /security/codes/redeem.
type RedeemCodeRequest struct {
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// InvalidateCodesRequest payload for POST /security/codes/invalidate.
type InvalidateCodesRequest struct {
	Purpose string `json:"purpose"`
}
