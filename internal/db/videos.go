package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bobarin/scenecast/internal/models"
)

// CreateVideo records a composed output for a process.
func (db *DB) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (process_id, output_path, orientation, scenes_count)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := db.QueryRowContext(
		ctx, query,
		video.ProcessID, video.OutputPath, video.Orientation, video.ScenesCount,
	).Scan(&video.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create video record: %w", err)
	}
	return nil
}

// UpdateVideoURL stores the published URL once the upload has succeeded.
func (db *DB) UpdateVideoURL(ctx context.Context, processID, videoURL string) error {
	query := `
		UPDATE videos
		SET video_url = $2
		WHERE process_id = $1
	`

	if _, err := db.ExecContext(ctx, query, processID, videoURL); err != nil {
		return fmt.Errorf("failed to update video url: %w", err)
	}
	return nil
}

// GetVideo fetches the video record for a process.
func (db *DB) GetVideo(ctx context.Context, processID string) (*models.Video, error) {
	query := `
		SELECT process_id, output_path, orientation, scenes_count, video_url, created_at
		FROM videos
		WHERE process_id = $1
	`

	video := &models.Video{}
	err := db.QueryRowContext(ctx, query, processID).Scan(
		&video.ProcessID, &video.OutputPath, &video.Orientation,
		&video.ScenesCount, &video.VideoURL, &video.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}
