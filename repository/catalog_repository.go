// Package repository provides data access layer for the catalog server.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"tvshowcase/database"
	"tvshowcase/models"
)

var (
	// ErrNotFound is returned when a category or video does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a category name is already taken
	ErrConflict = errors.New("already exists")
	// ErrAlreadySeeded is returned when seeding a non-empty store
	ErrAlreadySeeded = errors.New("catalog already seeded")
)

const queryTimeout = 5 * time.Second

const (
	insertDetailSQL = `
		INSERT INTO video_details (id, category, title, description, source, card, background, studio, rented)
		VALUES (:id, :category, :title, :description, :source, :card, :background, :studio, :rented)
	`
	insertSummarySQL = `
		INSERT INTO video_summaries (id, category, title, source, card, background, studio)
		VALUES (:id, :category, :title, :source, :card, :background, :studio)
	`
	selectDetailColumns  = `id, category, title, description, source, card, background, studio, rented`
	selectSummaryColumns = `id, category, title, source, card, background, studio`
)

// CatalogRepository handles database operations for categories and videos.
// It owns the video id counter; writes that allocate ids hold mu for their
// whole transaction so the counter never runs ahead of committed rows.
type CatalogRepository struct {
	db *database.DB

	mu     sync.Mutex
	nextID int64

	// intn picks the video duplicated by DuplicateRandomVideo
	intn func(n int) int
}

// NewCatalogRepository creates a new catalog repository. Call LoadNextID
// before the first write.
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db, intn: rand.Intn}
}

// Ping checks that the database is reachable
func (r *CatalogRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// LoadNextID recomputes the id counter as the largest stored id plus one,
// or zero when the store holds no videos.
func (r *CatalogRepository) LoadNextID(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	var largest int64
	if err := r.db.GetContext(ctx, &largest, `SELECT COALESCE(MAX(id), -1) FROM video_details`); err != nil {
		return 0, fmt.Errorf("failed to find largest video id: %w", err)
	}
	r.nextID = largest + 1
	return r.nextID, nil
}

// NextID returns the id the next created video will get
func (r *CatalogRepository) NextID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID
}

// Status reports row counts and the id counter
func (r *CatalogRepository) Status(ctx context.Context) (*models.CatalogStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	categories, details, summaries, err := countRows(ctx, r.db)
	if err != nil {
		return nil, err
	}

	return &models.CatalogStatus{
		Created:    categories+details+summaries > 0,
		Categories: categories,
		Videos:     details,
		NextID:     r.NextID(),
	}, nil
}

// IsSeeded reports whether any of the three tables holds rows
func (r *CatalogRepository) IsSeeded(ctx context.Context) (bool, error) {
	status, err := r.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Created, nil
}

// ListCategories returns all categories in creation order
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, `SELECT name FROM categories ORDER BY position, name`); err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// ListVideosByCategory returns the summaries of every video in a category.
// An unknown category yields an empty list.
func (r *CatalogRepository) ListVideosByCategory(ctx context.Context, category string) ([]models.VideoSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`SELECT ` + selectSummaryColumns + ` FROM video_summaries WHERE category = ? ORDER BY id`)

	var videos []models.VideoSummary
	if err := r.db.SelectContext(ctx, &videos, query, category); err != nil {
		return nil, fmt.Errorf("failed to query videos in category %q: %w", category, err)
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return videos, nil
}

// ListVideos returns the summaries of every video in the store
func (r *CatalogRepository) ListVideos(ctx context.Context) ([]models.VideoSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var videos []models.VideoSummary
	if err := r.db.SelectContext(ctx, &videos, `SELECT `+selectSummaryColumns+` FROM video_summaries ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return videos, nil
}

// GetVideo retrieves the detail record of a video by its ID
func (r *CatalogRepository) GetVideo(ctx context.Context, id int64) (*models.VideoDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return getVideo(ctx, r.db, r.db.Rebind, id)
}

// SetRented updates the rented flag of a video and returns the stored record.
// Clearing a flag that is already clear does not touch the row.
func (r *CatalogRepository) SetRented(ctx context.Context, id int64, rented bool) (*models.VideoDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	video, err := getVideo(ctx, r.db, r.db.Rebind, id)
	if err != nil {
		return nil, err
	}
	if !rented && !video.Rented {
		return video, nil
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE video_details SET rented = ? WHERE id = ?`), rented, id); err != nil {
		return nil, fmt.Errorf("failed to update rented flag of video %d: %w", id, err)
	}
	video.Rented = rented
	return video, nil
}

// Seed populates an empty store from the given catalog, assigning sequential
// ids from zero. It returns the number of videos created.
func (r *CatalogRepository) Seed(ctx context.Context, catalog []models.SeedCategory) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var created int
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		categories, details, summaries, err := countRows(ctx, tx)
		if err != nil {
			return err
		}
		if categories+details+summaries > 0 {
			return ErrAlreadySeeded
		}

		created, err = seedTx(ctx, tx, catalog)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.nextID = int64(created)
	return created, nil
}

// Clear deletes every category and video and resets the id counter
func (r *CatalogRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		return clearTx(ctx, tx)
	})
	if err != nil {
		return err
	}
	r.nextID = 0
	return nil
}

// Reset replaces the whole store with the given catalog in one transaction.
// Readers never observe an empty store, and a failed seed keeps the old rows.
func (r *CatalogRepository) Reset(ctx context.Context, catalog []models.SeedCategory) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var created int
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearTx(ctx, tx); err != nil {
			return err
		}
		var err error
		created, err = seedTx(ctx, tx, catalog)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.nextID = int64(created)
	return created, nil
}

// DuplicateCategory creates category `to` holding a copy of every video in
// `from`. Copies get fresh ids and are not rented.
func (r *CatalogRepository) DuplicateCategory(ctx context.Context, from, to string) ([]models.VideoDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var copies []models.VideoDetail
	next := r.nextID
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		copies, err = duplicateCategoryTx(ctx, tx, from, to, &next)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.nextID = next
	return copies, nil
}

// DuplicateRandomVideo copies one randomly chosen video of the category back
// into the same category. It returns nil without error when the category has
// no videos.
func (r *CatalogRepository) DuplicateRandomVideo(ctx context.Context, category string) (*models.VideoDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dup *models.VideoDetail
	next := r.nextID
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		dup, err = r.duplicateRandomVideoTx(ctx, tx, category, &next)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.nextID = next
	return dup, nil
}

// DuplicateCategoryAndVideo runs DuplicateCategory and then
// DuplicateRandomVideo on `from` as one transaction, so a failure of either
// step leaves the store untouched.
func (r *CatalogRepository) DuplicateCategoryAndVideo(ctx context.Context, from, to string) ([]models.VideoDetail, *models.VideoDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var copies []models.VideoDetail
	var dup *models.VideoDetail
	next := r.nextID
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if copies, err = duplicateCategoryTx(ctx, tx, from, to, &next); err != nil {
			return err
		}
		dup, err = r.duplicateRandomVideoTx(ctx, tx, from, &next)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	r.nextID = next
	return copies, dup, nil
}

// duplicateCategoryTx copies `from` into the new category `to`, taking ids
// from *next
func duplicateCategoryTx(ctx context.Context, tx *sqlx.Tx, from, to string, next *int64) ([]models.VideoDetail, error) {
	if err := requireCategory(ctx, tx, from); err != nil {
		return nil, err
	}
	if err := rejectCategory(ctx, tx, to); err != nil {
		return nil, err
	}

	var position int64
	if err := tx.GetContext(ctx, &position, `SELECT COALESCE(MAX(position), -1) + 1 FROM categories`); err != nil {
		return nil, fmt.Errorf("failed to find category position: %w", err)
	}
	if err := insertCategory(ctx, tx, to, position); err != nil {
		return nil, err
	}

	originals, err := videosInCategory(ctx, tx, from)
	if err != nil {
		return nil, err
	}

	copies := make([]models.VideoDetail, 0, len(originals))
	for _, original := range originals {
		dup := original
		dup.ID = *next
		dup.Category = to
		dup.Rented = false
		if err := insertVideo(ctx, tx, dup); err != nil {
			return nil, err
		}
		copies = append(copies, dup)
		*next++
	}
	return copies, nil
}

// duplicateRandomVideoTx copies one video of the category, taking its id
// from *next. An empty category yields nil.
func (r *CatalogRepository) duplicateRandomVideoTx(ctx context.Context, tx *sqlx.Tx, category string, next *int64) (*models.VideoDetail, error) {
	videos, err := videosInCategory(ctx, tx, category)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}

	picked := videos[r.intn(len(videos))]
	picked.ID = *next
	picked.Rented = false
	if err := insertVideo(ctx, tx, picked); err != nil {
		return nil, err
	}
	*next++
	return &picked, nil
}

func videosInCategory(ctx context.Context, tx *sqlx.Tx, category string) ([]models.VideoDetail, error) {
	var videos []models.VideoDetail
	query := tx.Rebind(`SELECT ` + selectDetailColumns + ` FROM video_details WHERE category = ? ORDER BY id`)
	if err := tx.SelectContext(ctx, &videos, query, category); err != nil {
		return nil, fmt.Errorf("failed to query videos in category %q: %w", category, err)
	}
	return videos, nil
}

// RenameCategory moves a category and all of its videos to a new name
func (r *CatalogRepository) RenameCategory(ctx context.Context, from, to string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireCategory(ctx, tx, from); err != nil {
			return err
		}
		if err := rejectCategory(ctx, tx, to); err != nil {
			return err
		}

		for _, stmt := range []string{
			`UPDATE categories SET name = ? WHERE name = ?`,
			`UPDATE video_details SET category = ? WHERE category = ?`,
			`UPDATE video_summaries SET category = ? WHERE category = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), to, from); err != nil {
				return fmt.Errorf("failed to rename category %q: %w", from, err)
			}
		}
		return nil
	})
}

// seedTx inserts the catalog with ids counting up from zero
func seedTx(ctx context.Context, tx *sqlx.Tx, catalog []models.SeedCategory) (int, error) {
	next := int64(0)
	for position, category := range catalog {
		if err := insertCategory(ctx, tx, category.Category, int64(position)); err != nil {
			return 0, err
		}
		for _, video := range category.Videos {
			if err := insertVideo(ctx, tx, video.Detail(next, category.Category)); err != nil {
				return 0, err
			}
			next++
		}
	}
	return int(next), nil
}

func clearTx(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range []string{"categories", "video_details", "video_summaries"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction bounded by the query timeout
func (r *CatalogRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func getVideo(ctx context.Context, q sqlx.QueryerContext, rebind func(string) string, id int64) (*models.VideoDetail, error) {
	var video models.VideoDetail
	query := rebind(`SELECT ` + selectDetailColumns + ` FROM video_details WHERE id = ?`)
	if err := sqlx.GetContext(ctx, q, &video, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func countRows(ctx context.Context, q sqlx.QueryerContext) (categories, details, summaries int, err error) {
	counts := []struct {
		table string
		dest  *int
	}{
		{"categories", &categories},
		{"video_details", &details},
		{"video_summaries", &summaries},
	}
	for _, c := range counts {
		if err = sqlx.GetContext(ctx, q, c.dest, `SELECT COUNT(*) FROM `+c.table); err != nil {
			return 0, 0, 0, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return categories, details, summaries, nil
}

func categoryExists(ctx context.Context, tx *sqlx.Tx, name string) (bool, error) {
	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM categories WHERE name = ?`), name); err != nil {
		return false, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	return count > 0, nil
}

func requireCategory(ctx context.Context, tx *sqlx.Tx, name string) error {
	exists, err := categoryExists(ctx, tx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return nil
}

func rejectCategory(ctx context.Context, tx *sqlx.Tx, name string) error {
	exists, err := categoryExists(ctx, tx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("category %q: %w", name, ErrConflict)
	}
	return nil
}

func insertCategory(ctx context.Context, tx *sqlx.Tx, name string, position int64) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO categories (name, position) VALUES (?, ?)`), name, position); err != nil {
		return fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return nil
}

// insertVideo writes the detail row and its matching summary row
func insertVideo(ctx context.Context, tx *sqlx.Tx, video models.VideoDetail) error {
	if _, err := tx.NamedExecContext(ctx, insertDetailSQL, video); err != nil {
		return fmt.Errorf("failed to create video %d: %w", video.ID, err)
	}
	if _, err := tx.NamedExecContext(ctx, insertSummarySQL, video.Summary()); err != nil {
		return fmt.Errorf("failed to create video summary %d: %w", video.ID, err)
	}
	return nil
}
