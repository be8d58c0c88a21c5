package barcode

import (
	"fmt"
	"image"
	"math"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/nutriscan/backend/internal/domain"
)

const (
	// regions narrower than this around a found symbol are not searched again
	minDimensionToRecur = 100
	maxDepth            = 4
)

// Decoder finds EAN/UPC barcodes in product photos
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

var _ multi.MultipleBarcodeReader = (*Decoder)(nil)

// NewDecoder creates a barcode decoder for retail (EAN-13, EAN-8, UPC-A, UPC-E) symbols
func NewDecoder() *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the text of every distinct barcode found in img.
// domain.ErrNoBarcode is returned when there is none.
func (d *Decoder) Decode(img image.Image) ([]string, error) {
	if img == nil {
		return nil, domain.ErrNoBarcode
	}
	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	results, err := d.DecodeMultiple(bitmap, d.hints)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(results))
	for _, result := range results {
		codes = append(codes, result.GetText())
	}
	return codes, nil
}

func (d *Decoder) DecodeMultipleWithoutHint(bitmap *gozxing.BinaryBitmap) ([]*gozxing.Result, error) {
	return d.DecodeMultiple(bitmap, d.hints)
}

// DecodeMultiple decodes the whole bitmap, then searches the regions left,
// above, right and below each found symbol for more. Results are unique by text.
func (d *Decoder) DecodeMultiple(bitmap *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error) {
	// readers keep row buffers, so each call gets its own
	s := &search{
		reader: oned.NewMultiFormatUPCEANReader(hints),
		hints:  hints,
		seen:   make(map[string]bool),
	}
	s.decodeRegion(bitmap, 0, 0, 0)
	if len(s.results) == 0 {
		return nil, domain.ErrNoBarcode
	}
	return s.results, nil
}

type search struct {
	reader  gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
	results []*gozxing.Result
	seen    map[string]bool
}

func (s *search) decodeRegion(bitmap *gozxing.BinaryBitmap, xOffset, yOffset, depth int) {
	if depth > maxDepth {
		return
	}

	// not-found, checksum and format failures all mean no readable symbol here
	result, err := s.reader.Decode(bitmap, s.hints)
	if err != nil {
		return
	}

	text := result.GetText()
	if text != "" && !s.seen[text] {
		s.seen[text] = true
		s.results = append(s.results, translate(result, xOffset, yOffset))
	}

	points := result.GetResultPoints()
	if len(points) == 0 || !bitmap.IsCropSupported() {
		return
	}

	width, height := bitmap.GetWidth(), bitmap.GetHeight()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	for _, p := range points {
		if p == nil {
			continue
		}
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	left, top := clampInt(minX, width), clampInt(minY, height)
	right, bottom := clampInt(maxX, width), clampInt(maxY, height)

	if left > minDimensionToRecur {
		s.decodeCrop(bitmap, 0, 0, left, height, xOffset, yOffset, depth)
	}
	if top > minDimensionToRecur {
		s.decodeCrop(bitmap, 0, 0, width, top, xOffset, yOffset, depth)
	}
	if right < width-minDimensionToRecur {
		s.decodeCrop(bitmap, right, 0, width-right, height, xOffset+right, yOffset, depth)
	}
	if bottom < height-minDimensionToRecur {
		s.decodeCrop(bitmap, 0, bottom, width, height-bottom, xOffset, yOffset+bottom, depth)
	}
}

func (s *search) decodeCrop(bitmap *gozxing.BinaryBitmap, left, top, width, height, xOffset, yOffset, depth int) {
	cropped, err := bitmap.Crop(left, top, width, height)
	if err != nil {
		return
	}
	s.decodeRegion(cropped, xOffset, yOffset, depth+1)
}

// translate moves the result points of a cropped region back into image coordinates
func translate(result *gozxing.Result, xOffset, yOffset int) *gozxing.Result {
	if xOffset == 0 && yOffset == 0 {
		return result
	}
	points := make([]gozxing.ResultPoint, 0, len(result.GetResultPoints()))
	for _, p := range result.GetResultPoints() {
		if p == nil {
			continue
		}
		points = append(points, gozxing.NewResultPoint(p.GetX()+float64(xOffset), p.GetY()+float64(yOffset)))
	}
	moved := gozxing.NewResult(result.GetText(), result.GetRawBytes(), points, result.GetBarcodeFormat())
	moved.PutAllMetadata(result.GetResultMetadata())
	return moved
}

func clampInt(v float64, limit int) int {
	n := int(v)
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
