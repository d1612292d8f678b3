package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindByUserID returns the trust row for a hashed user ID. Unknown users get
// a zero-valued row rather than an error: a first-time submitter simply has
// no history yet.
func (r *UserRepo) FindByUserID(ctx context.Context, userID model.UserID) (*model.User, error) {
	query := `
		SELECT user_id, vip, shadow_banned, ban_reason,
		       total_submissions, upvoted_submissions, downvoted_submissions,
		       first_seen, last_active
		FROM users
		WHERE user_id = $1`

	var u model.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.VIP, &u.ShadowBanned, &u.BanReason,
		&u.TotalSubmissions, &u.UpvotedSubmissions, &u.DownvotedSubmissions,
		&u.FirstSeen, &u.LastActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.User{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
