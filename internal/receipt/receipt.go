package receipt

import (
	"time"

	"github.com/zombor/receiptd/internal/pipeline"
)

// Receipt wraps an extracted expense record with upload metadata
type Receipt struct {
	ID              string           `json:"id"`
	Record          *pipeline.Record `json:"record"`
	Filename        string           `json:"filename"`      // Stored filename, prefixed with the receipt ID
	OriginalName    string           `json:"original_name"` // Filename as uploaded
	ContentType     string           `json:"content_type"`
	FileSize        int64            `json:"file_size"`
	ImageDimensions string           `json:"image_dimensions,omitempty"` // "WxH" in pixels, empty when unknown
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
