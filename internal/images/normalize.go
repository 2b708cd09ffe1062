package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// JPEGQuality matches what the marketplace re-encodes to, so uploads are
// not degraded twice.
const JPEGQuality = 92

// MaxUploadBytes is the marketplace's per-picture limit.
const MaxUploadBytes = 25 << 20

// IsJPEG sniffs the first bytes of data.
func IsJPEG(data []byte) bool {
	return http.DetectContentType(data) == "image/jpeg"
}

// LooksLikeHTML reports whether a body that was supposed to be an image is
// really an error page.
func LooksLikeHTML(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// NormalizeJPEG returns data as a baseline JPEG. JPEG input is returned
// untouched. Anything else (PNG, GIF, WebP) is decoded, flattened onto
// white and re-encoded. maxDim > 0 additionally bounds the longer side.
func NormalizeJPEG(data []byte, maxDim int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if IsJPEG(data) && maxDim <= 0 {
		return data, nil
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if format == "jpeg" && !exceeds(src.Bounds(), maxDim) {
		return data, nil
	}

	bounds := src.Bounds()
	w, h := targetSize(bounds.Dx(), bounds.Dy(), maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func exceeds(b image.Rectangle, maxDim int) bool {
	return maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim)
}

func targetSize(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
