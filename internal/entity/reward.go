package entity

// RewardAccount holds a user's point balance. Only the reward ledger mutates
// it, and the balance never goes negative: debits fail closed.
type RewardAccount struct {
	UserID  int `json:"user_id"`
	Balance int `json:"balance"`
}
