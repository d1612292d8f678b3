package model

import "time"

// User holds trust metadata for a submitter, keyed by hashed user ID.
type User struct {
	UserID               UserID    `json:"userId"`
	VIP                  bool      `json:"isVip"`
	ShadowBanned         bool      `json:"-"`
	BanReason            string    `json:"-"`
	TotalSubmissions     int       `json:"totalSubmissions"`
	UpvotedSubmissions   int       `json:"-"`
	DownvotedSubmissions int       `json:"-"`
	FirstSeen            time.Time `json:"-"`
	LastActive           time.Time `json:"-"`
}

// UserResponse is the API response for submitter lookups.
type UserResponse struct {
	UserID           UserID  `json:"userId"`
	Reputation       float64 `json:"reputation"`
	TotalSubmissions int     `json:"totalSubmissions"`
	AccountAge       int     `json:"accountAge"`
	IsVIP            bool    `json:"isVip"`
	Trustworthy      bool    `json:"trustworthy"`
}
