// Package service contains the photo store behind the map popups and the
// event bus that carries map commands and host notifications.
package service

import "time"

// Geo types of a photo's position.
const (
	GeoEXIF = 0 // read from the file
	GeoUser = 1 // placed by the user
)

// Photo is one stored photo record.
type Photo struct {
	ID            int64     `json:"image_id" required:"false" doc:"Image identifier; the path id wins" example:"1"`
	Filename      string    `json:"filename" required:"true" minLength:"1" doc:"Full path of the photo file" example:"/pictures/2014/IMG_0001.JPG"`
	CameraMake    string    `json:"camera_make,omitempty" doc:"Camera manufacturer" example:"Canon"`
	TakenDate     time.Time `json:"taken_date" doc:"When the photo was taken, or the file date"`
	TakenDateType int       `json:"taken_date_type" enum:"0,1" doc:"0 = EXIF taken date, 1 = file date"`
	Latitude      *float64  `json:"latitude,omitempty" minimum:"-90" maximum:"90" doc:"Latitude"`
	Longitude     *float64  `json:"longitude,omitempty" minimum:"-180" maximum:"180" doc:"Longitude"`
	GeoType       int       `json:"geo_type" enum:"0,1" doc:"0 = EXIF position, 1 = user placed"`
	Thumbnail     []byte    `json:"thumbnail,omitempty" doc:"JPEG thumbnail, base64 encoded"`
}

// UserPlaced reports whether the position was set by the user.
func (p Photo) UserPlaced() bool { return p.GeoType == GeoUser }
