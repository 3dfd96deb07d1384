package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

// AllowedMIME lists what uploads may contain.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DefaultMaxPixels is the decode budget used when Processor.MaxPixels is 0.
const DefaultMaxPixels = 40_000_000

// Processor normalises uploads before they are sent to a vision model.
// MaxPixels caps width*height as read from the image header, before any
// pixel buffer is allocated.
type Processor struct {
	MaxDimension int
	Quality      int
	MaxPixels    int
}

// Result of Process. Hash identifies the original bytes.
type Result struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Resized  bool
	Hash     string
}

// Process sniffs, decodes and, when needed, downsizes the image. JPEG and
// PNG within the size limit pass through untouched; everything else comes
// out as JPEG.
func (p Processor) Process(raw []byte) (Result, error) {
	if len(raw) == 0 {
		return Result{}, critique.Invalid("image", "empty file")
	}
	mime := DetectMIME(raw)
	if !AllowedMIME[mime] {
		return Result{}, critique.Invalid("image", "unsupported content type %q", mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Result{}, critique.Invalid("image", "cannot decode: %v", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.maxPixels()) {
		return Result{}, critique.Invalid("image", "%dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, p.maxPixels())
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Result{}, critique.Invalid("image", "cannot decode: %v", err)
	}
	b := img.Bounds()
	res := Result{Hash: Hash(raw), Width: b.Dx(), Height: b.Dy()}

	w, h := fit(b.Dx(), b.Dy(), p.MaxDimension)
	if w == b.Dx() && h == b.Dy() && (mime == "image/jpeg" || mime == "image/png") {
		res.Data = raw
		res.MIMEType = mime
		return res, nil
	}

	// flatten ke background putih supaya alpha tidak jadi hitam di JPEG
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.quality()}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	res.Data = out.Bytes()
	res.MIMEType = "image/jpeg"
	res.Width, res.Height = w, h
	res.Resized = w != b.Dx() || h != b.Dy()
	return res, nil
}

func (p Processor) maxPixels() int {
	if p.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return p.MaxPixels
}

func (p Processor) quality() int {
	if p.Quality <= 0 || p.Quality > 100 {
		return jpeg.DefaultQuality
	}
	return p.Quality
}

// fit scales (w, h) so the longer side is at most limit, keeping aspect.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

// DetectMIME sniffs content, ignoring any client supplied type.
func DetectMIME(raw []byte) string {
	mime := http.DetectContentType(raw)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

// Hash returns the hex sha256 of b.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DecodeBase64MaybeDataURL decodes plain base64 or a data: URI.
func DecodeBase64MaybeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			s = s[idx+1:]
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, critique.Invalid("image_base64", "not valid base64")
	}
	return b, nil
}
