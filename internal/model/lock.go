package model

// LockCategory is a moderator lock on (video, service, category). While a
// lock exists, non-VIP submissions for that category are rejected and locked
// segments win selection over organic ones.
type LockCategory struct {
	VideoID  VideoID  `json:"videoID"`
	Service  Service  `json:"-"`
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
	UserID   UserID   `json:"-"`
}

// LockCategoriesResponse is the GET /api/lockCategories response.
type LockCategoriesResponse struct {
	Categories []LockCategory `json:"categories"`
}

// DeleteLockRequest is the DELETE /api/lockCategories body. Categories must
// name at least one category; the endpoint rejects empty lists.
type DeleteLockRequest struct {
	VideoID    string   `json:"videoID"`
	UserID     string   `json:"userID"`
	Service    string   `json:"service,omitempty"`
	Categories []string `json:"categories"`
}
