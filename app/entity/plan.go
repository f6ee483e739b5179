package entity

// TokenNative is the asset marker for the chain's native coin. An empty token
// string means the same thing.
const TokenNative = "MAS"

// Plan is a creator-defined recurring charge offer. Records are append-only:
// a plan is never deleted, only flagged inactive.
type Plan struct {
	ID       uint64 `json:"id"`
	Creator  string `json:"creator"`
	Price    uint64 `json:"price"`
	Interval uint64 `json:"interval"` // milliseconds between charges
	Token    string `json:"token"`
	IsActive bool   `json:"isActive"`
}

func NewPlan(id uint64, creator string, price, interval uint64, token string) *Plan {
	return &Plan{
		ID:       id,
		Creator:  creator,
		Price:    price,
		Interval: interval,
		Token:    token,
		IsActive: true,
	}
}

// IsNativeToken reports whether the token denotes the native settlement asset.
func IsNativeToken(token string) bool {
	return token == "" || token == TokenNative
}
