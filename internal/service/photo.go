package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joeblew999/plat-photomap/internal/geo"
	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/thumbnail"
)

// ErrPhotoNotFound is returned for an unknown image id.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoService stores photo records in DuckDB and serves popup metadata.
type PhotoService struct {
	db     *sql.DB
	badges thumbnail.Badges
	log    *slog.Logger
}

// NewPhotoService creates a photo service over an open database.
func NewPhotoService(db *sql.DB, badges thumbnail.Badges, log *slog.Logger) *PhotoService {
	return &PhotoService{db: db, badges: badges, log: logger.Or(log)}
}

const photoColumns = `image_id, filename, camera_make, taken_date, taken_date_type,
	latitude, longitude, geo_type, thumbnail`

// Put inserts or replaces a photo.
func (s *PhotoService) Put(ctx context.Context, p Photo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO photos (`+photoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Filename, p.CameraMake, p.TakenDate.UTC(), p.TakenDateType,
		p.Latitude, p.Longitude, p.GeoType, p.Thumbnail,
	)
	if err != nil {
		return fmt.Errorf("put photo %d: %w", p.ID, err)
	}
	return nil
}

// Get returns a photo by id.
func (s *PhotoService) Get(ctx context.Context, id int64) (Photo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE image_id = ?`, id)

	var (
		p        Photo
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.Filename, &p.CameraMake, &p.TakenDate, &p.TakenDateType,
		&lat, &lng, &p.GeoType, &p.Thumbnail)
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, fmt.Errorf("photo %d: %w", id, ErrPhotoNotFound)
	}
	if err != nil {
		return Photo{}, fmt.Errorf("get photo %d: %w", id, err)
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lng.Valid {
		p.Longitude = &lng.Float64
	}
	return p, nil
}

// Delete removes a photo by id.
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE image_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("photo %d: %w", id, ErrPhotoNotFound)
	}
	return nil
}

// Place moves photos to (lat, lng) and marks them user placed. Unknown ids
// are skipped; it returns the number of photos updated.
func (s *PhotoService) Place(ctx context.Context, ids []int64, lat, lng float64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("place photos: %w", err)
	}
	defer tx.Rollback()

	var placed int
	for _, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE photos SET latitude = ?, longitude = ?, geo_type = ? WHERE image_id = ?`,
			lat, lng, GeoUser, id)
		if err != nil {
			return 0, fmt.Errorf("place photo %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			placed += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("place photos: %w", err)
	}
	if placed < len(ids) {
		s.log.Warn("dragged photos missing from store", "ids", ids, "placed", placed)
	}
	return placed, nil
}

// ImageMetadata implements photomap.MetadataSource. The thumbnail carries a
// pin badge for user-placed photos and a compass badge otherwise.
func (s *PhotoService) ImageMetadata(ctx context.Context, id int64) (photomap.Metadata, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return photomap.Metadata{}, err
	}

	thumb, err := s.badges.Decorate(p.Thumbnail, p.UserPlaced())
	if err != nil {
		s.log.Warn("thumbnail badge failed, using plain thumbnail", "image", id, "error", err)
		thumb = p.Thumbnail
	}

	return photomap.Metadata{
		ID:            p.ID,
		Thumbnail:     thumb,
		Filename:      p.Filename,
		TakenDate:     p.TakenDate,
		TakenDateType: p.TakenDateType,
		CameraMake:    p.CameraMake,
	}, nil
}

// Bounds returns the rectangle covering every located photo taken in
// [from, to]. The rect is invalid when no photo qualifies.
func (s *PhotoService) Bounds(ctx context.Context, from, to time.Time) (geo.Rect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT latitude, longitude FROM photos WHERE taken_date BETWEEN ? AND ?`,
		from.UTC(), to.UTC())
	if err != nil {
		return geo.Rect{}, fmt.Errorf("query bounds: %w", err)
	}
	defer rows.Close()

	var r geo.Rect
	for rows.Next() {
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&lat, &lng); err != nil {
			return geo.Rect{}, fmt.Errorf("scan bounds: %w", err)
		}
		r.AddElement(nullable(lat), nullable(lng))
	}
	return r, rows.Err()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
