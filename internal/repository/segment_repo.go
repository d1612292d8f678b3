package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

type SegmentRepo struct {
	pool *pgxpool.Pool
}

func NewSegmentRepo(pool *pgxpool.Pool) *SegmentRepo {
	return &SegmentRepo{pool: pool}
}

const segmentColumns = `
	s.uuid, s.video_id, s.hashed_video_id, s.service, s.category,
	s.start_time, s.end_time, s.first_characters, s.last_characters,
	s.length, s.description_hash, s.user_id, COALESCE(v.votes, 0),
	s.locked, s.hidden, s.shadow_hidden, s.reputation, s.time_submitted, s.user_agent`

func scanSegment(row interface{ Scan(...any) error }) (model.DBSegment, error) {
	var s model.DBSegment
	err := row.Scan(
		&s.UUID, &s.VideoID, &s.HashedVideoID, &s.Service, &s.Category,
		&s.StartTime, &s.EndTime, &s.FirstCharacters, &s.LastCharacters,
		&s.Length, &s.DescriptionHash, &s.UserID, &s.Votes,
		&s.Locked, &s.Hidden, &s.ShadowHidden, &s.Reputation, &s.TimeSubmitted, &s.UserAgent,
	)
	return s, err
}

// FindByVideoID returns all non-hidden segments for a video, joined with
// their vote aggregates. Shadow-hidden rows are included; visibility is a
// per-viewer decision made by the engine, not the store.
func (r *SegmentRepo) FindByVideoID(ctx context.Context, videoID model.VideoID, service model.Service) ([]model.DBSegment, error) {
	query := `
		SELECT ` + segmentColumns + `
		FROM segments s
		LEFT JOIN segment_votes v ON v.uuid = s.uuid
		WHERE s.video_id = $1 AND s.service = $2 AND s.hidden = FALSE
		ORDER BY s.start_time ASC`

	rows, err := r.pool.Query(ctx, query, videoID, service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []model.DBSegment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

// FindByHashPrefix returns all non-hidden segments whose stored video hash
// starts with the given prefix.
func (r *SegmentRepo) FindByHashPrefix(ctx context.Context, prefix string, service model.Service) ([]model.DBSegment, error) {
	query := `
		SELECT ` + segmentColumns + `
		FROM segments s
		LEFT JOIN segment_votes v ON v.uuid = s.uuid
		WHERE s.hashed_video_id LIKE $1 || '%' AND s.service = $2 AND s.hidden = FALSE
		ORDER BY s.video_id, s.start_time ASC
		LIMIT 1000`

	rows, err := r.pool.Query(ctx, query, prefix, service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []model.DBSegment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

// CountIdentical is the duplicate point lookup: how many stored rows carry
// exactly this normalized content for (video, service). The match offset is
// part of a segment's identity, so it is part of the lookup too.
func (r *SegmentRepo) CountIdentical(ctx context.Context, videoID model.VideoID, service model.Service, seg model.IncomingSegment) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM segments
		WHERE video_id = $1 AND service = $2 AND category = $3
		  AND first_characters = $4 AND last_characters = $5
		  AND length = $6 AND description_hash = $7 AND start_time = $8`

	var count int
	err := r.pool.QueryRow(ctx, query,
		videoID, service, seg.Category,
		seg.FirstCharacters, seg.LastCharacters, seg.Length, seg.DescriptionHash,
		seg.Offset,
	).Scan(&count)
	return count, err
}

// Insert persists a segment, its vote aggregate row, and the private
// submitter IP hash row in one transaction. The UUID primary key is the
// storage backstop for the duplicate check that ran before this call.
func (r *SegmentRepo) Insert(ctx context.Context, seg model.DBSegment, hashedIP model.HashedIP) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO segments (uuid, video_id, hashed_video_id, service, category,
			start_time, end_time, first_characters, last_characters, length,
			description_hash, user_id, locked, hidden, shadow_hidden, reputation,
			time_submitted, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		seg.UUID, seg.VideoID, seg.HashedVideoID, seg.Service, seg.Category,
		seg.StartTime, seg.EndTime, seg.FirstCharacters, seg.LastCharacters, seg.Length,
		seg.DescriptionHash, seg.UserID, seg.Locked, seg.Hidden, seg.ShadowHidden, seg.Reputation,
		seg.TimeSubmitted, seg.UserAgent)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO segment_votes (uuid, votes) VALUES ($1, $2)`,
		seg.UUID, seg.Votes)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO segment_submitters (video_id, hashed_ip, time_submitted, service)
		VALUES ($1, $2, $3, $4)`,
		seg.VideoID, hashedIP, seg.TimeSubmitted, seg.Service)
	if err != nil {
		return err
	}

	// Track submission volume on the user row for trust scoring.
	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, total_submissions) VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET total_submissions = users.total_submissions + 1, last_active = NOW()`,
		seg.UserID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SubmitterHashes returns the salted IP hashes recorded against the exact
// (video, submission time, service) tuple. Used only by the shadow-hidden
// visibility check.
func (r *SegmentRepo) SubmitterHashes(ctx context.Context, videoID model.VideoID, timeSubmitted int64, service model.Service) ([]model.HashedIP, error) {
	query := `
		SELECT hashed_ip FROM segment_submitters
		WHERE video_id = $1 AND time_submitted = $2 AND service = $3`

	rows, err := r.pool.Query(ctx, query, videoID, timeSubmitted, service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []model.HashedIP
	for rows.Next() {
		var h model.HashedIP
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
