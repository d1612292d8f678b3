package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

type LockRepo struct {
	pool *pgxpool.Pool
}

func NewLockRepo(pool *pgxpool.Pool) *LockRepo {
	return &LockRepo{pool: pool}
}

// FindByVideoID returns every category lock on (video, service), with the
// moderator-supplied reason text.
func (r *LockRepo) FindByVideoID(ctx context.Context, videoID model.VideoID, service model.Service) ([]model.LockCategory, error) {
	query := `
		SELECT video_id, service, category, reason, user_id
		FROM lock_categories
		WHERE video_id = $1 AND service = $2`

	rows, err := r.pool.Query(ctx, query, videoID, service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locks []model.LockCategory
	for rows.Next() {
		var l model.LockCategory
		if err := rows.Scan(&l.VideoID, &l.Service, &l.Category, &l.Reason, &l.UserID); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, rows.Err()
}

// Delete removes locks on the given categories. An empty category list
// removes every lock on the video.
func (r *LockRepo) Delete(ctx context.Context, videoID model.VideoID, service model.Service, categories []model.Category) error {
	if len(categories) == 0 {
		_, err := r.pool.Exec(ctx, `
			DELETE FROM lock_categories WHERE video_id = $1 AND service = $2`,
			videoID, service)
		return err
	}

	_, err := r.pool.Exec(ctx, `
		DELETE FROM lock_categories
		WHERE video_id = $1 AND service = $2 AND category = ANY($3)`,
		videoID, service, categories)
	return err
}
