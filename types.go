package mediaprobe

// Nature is the high-level media kind a parser produces.
type Nature string

const (
	NatureImage    Nature = "image"
	NatureAudio    Nature = "audio"
	NatureDocument Nature = "document"
	NatureVideo    Nature = "video"
)

// Format is a short symbolic tag for a file format, e.g. "png", "jpg", "ogg".
type Format string

// ColorMode enumerates the color modes an Image result can report.
type ColorMode string

const (
	ColorGrayscale ColorMode = "grayscale"
	ColorRGB       ColorMode = "rgb"
	ColorRGBA      ColorMode = "rgba"
	ColorIndexed   ColorMode = "indexed"
	ColorCMYK      ColorMode = "cmyk"
)

// Orientation enumerates the EXIF-style orientation tags an Image result
// can report.
type Orientation string

const (
	OrientationTopLeft     Orientation = "top_left"
	OrientationTopRight    Orientation = "top_right"
	OrientationBottomRight Orientation = "bottom_right"
	OrientationBottomLeft  Orientation = "bottom_left"
	OrientationLeftTop     Orientation = "left_top"
	OrientationRightTop    Orientation = "right_top"
	OrientationRightBottom Orientation = "right_bottom"
	OrientationLeftBottom  Orientation = "left_bottom"
)

// Result is the common interface every tagged result variant implements.
// It exists so dispatch can hold a slice of heterogeneous results without
// knowing their concrete type, and so the CLI can serialize any of them.
type Result interface {
	// ResultNature returns the nature inferred from the concrete variant.
	ResultNature() Nature
}

// Image is the result record produced by image-format parsers.
type Image struct {
	Format      Format    `json:"format"`
	WidthPx     int       `json:"width_px"`
	HeightPx    int       `json:"height_px"`
	ColorMode   ColorMode `json:"color_mode"`
	HasAlpha    bool      `json:"has_transparency"`
	ContentType string    `json:"content_type"`

	HasMultipleFrames        *bool        `json:"has_multiple_frames,omitempty"`
	NumAnimationOrVideoFrames *int        `json:"num_animation_or_video_frames,omitempty"`
	Orientation               *Orientation `json:"orientation,omitempty"`

	// Intrinsics carries format-specific extras that do not warrant a
	// dedicated field on the shared record (e.g. EXIF tag dumps).
	Intrinsics any `json:"intrinsics,omitempty"`
}

func (Image) ResultNature() Nature { return NatureImage }

// Audio is the result record produced by audio-format parsers.
type Audio struct {
	Format               Format  `json:"format"`
	SampleRateHz         int     `json:"audio_sample_rate_hz"`
	NumChannels           int     `json:"num_audio_channels"`
	MediaDurationSeconds float64 `json:"media_duration_seconds"`
	ContentType          string  `json:"content_type"`

	Intrinsics any `json:"intrinsics,omitempty"`
}

func (Audio) ResultNature() Nature { return NatureAudio }

// Document is the result record produced by document-format parsers
// (ZIP, PDF, DOCX, ...).
type Document struct {
	Format      Format `json:"format"`
	NumPages    *int   `json:"num_pages,omitempty"`
	ContentType string `json:"content_type"`

	Intrinsics any `json:"intrinsics,omitempty"`
}

func (Document) ResultNature() Nature { return NatureDocument }

// Video is the result record produced by video-format parsers.
type Video struct {
	Format                    Format  `json:"format"`
	WidthPx                   int     `json:"width_px"`
	HeightPx                  int     `json:"height_px"`
	MediaDurationSeconds      float64 `json:"media_duration_seconds"`
	NumAnimationOrVideoFrames *int    `json:"num_animation_or_video_frames,omitempty"`
	ContentType               string  `json:"content_type"`

	Intrinsics any `json:"intrinsics,omitempty"`
}

func (Video) ResultNature() Nature { return NatureVideo }
