package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	t.Parallel()
	raw := pngBytes(t, 3000, 1000)
	res, err := Processor{MaxDimension: 1000, Quality: 80}.Process(raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Resized || res.Width != 1000 || res.Height != 333 {
		t.Fatalf("size: got=%dx%d resized=%v", res.Width, res.Height, res.Resized)
	}
	if res.MIMEType != "image/jpeg" {
		t.Fatalf("mime: got=%q want=%q", res.MIMEType, "image/jpeg")
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil || cfg.Width != 1000 || cfg.Height != 333 {
		t.Fatalf("encoded jpeg: %+v err=%v", cfg, err)
	}
	if res.Hash != Hash(raw) {
		t.Fatalf("hash must identify the original bytes")
	}
}

func TestProcessKeepsSmallPNG(t *testing.T) {
	t.Parallel()
	raw := pngBytes(t, 200, 300)
	res, err := Processor{MaxDimension: 1000}.Process(raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Resized || res.MIMEType != "image/png" || !bytes.Equal(res.Data, raw) {
		t.Fatalf("small png should pass through: mime=%q resized=%v", res.MIMEType, res.Resized)
	}
}

func TestProcessConvertsGIF(t *testing.T) {
	t.Parallel()
	pal := image.NewPaletted(image.Rect(0, 0, 40, 20), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	res, err := Processor{MaxDimension: 1000}.Process(buf.Bytes())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MIMEType != "image/jpeg" || res.Resized {
		t.Fatalf("gif: mime=%q resized=%v", res.MIMEType, res.Resized)
	}
}

func TestProcessRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image")},
		{"truncated png", pngBytes(t, 10, 10)[:20]},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := (Processor{}).Process(tt.raw); !critique.IsValidation(err) {
				t.Fatalf("err: got=%v want ValidationError", err)
			}
		})
	}
}

// hugePNG rewrites the IHDR of a tiny PNG so the header claims w x h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	raw := pngBytes(t, 1, 1)
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestProcessRejectsPixelBomb(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    Processor
		raw  []byte
	}{
		{"header claims 100000x100000", Processor{MaxDimension: 1024}, hugePNG(t, 100000, 100000)},
		{"over configured budget", Processor{MaxDimension: 1024, MaxPixels: 5000}, pngBytes(t, 100, 100)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.p.Process(tt.raw); !critique.IsValidation(err) {
				t.Fatalf("err: got=%v want ValidationError", err)
			}
		})
	}

	if _, err := (Processor{MaxPixels: 10000}).Process(pngBytes(t, 100, 100)); err != nil {
		t.Fatalf("at the budget: got=%v want nil", err)
	}
}

func TestFit(t *testing.T) {
	t.Parallel()
	tests := []struct{ w, h, max, ww, wh int }{
		{800, 600, 1000, 800, 600},
		{2000, 1000, 1000, 1000, 500},
		{1000, 4000, 1000, 250, 1000},
		{5000, 1, 1000, 1000, 1},
		{1200, 900, 0, 1200, 900},
	}
	for _, tt := range tests {
		if w, h := fit(tt.w, tt.h, tt.max); w != tt.ww || h != tt.wh {
			t.Fatalf("fit(%d,%d,%d): got=%dx%d want=%dx%d", tt.w, tt.h, tt.max, w, h, tt.ww, tt.wh)
		}
	}
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	t.Parallel()
	raw := []byte{0x89, 'P', 'N', 'G'}
	enc := base64.StdEncoding.EncodeToString(raw)
	for _, in := range []string{enc, "data:image/png;base64," + enc, "  " + enc + "\n"} {
		got, err := DecodeBase64MaybeDataURL(in)
		if err != nil || !bytes.Equal(got, raw) {
			t.Fatalf("decode %q: got=%v err=%v", in, got, err)
		}
	}
	if _, err := DecodeBase64MaybeDataURL("%%%"); !critique.IsValidation(err) {
		t.Fatalf("bad base64: got=%v", err)
	}
}
