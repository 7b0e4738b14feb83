// Package qrposter renders printable QR posters for hunt steps: the code
// itself plus a human-readable title and the encoded value as a caption.
package qrposter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	qrgen "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	posterWidth  = 400
	posterHeight = 500
	codeSize     = 300
)

// Poster describes one printable sheet
type Poster struct {
	// Title is the step name printed above the code
	Title string
	// Value is the text encoded in the QR code
	Value string
	// Instruction is the caption under the value; a default is used if empty
	Instruction string
}

// Render draws the poster onto a white canvas
func (p Poster) Render() (image.Image, error) {
	if p.Value == "" {
		return nil, fmt.Errorf("poster value is required")
	}

	code, err := qrgen.New(p.Value, qrgen.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", p.Value, err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, posterWidth, posterHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	qrImg := code.Image(codeSize)
	qrRect := image.Rect((posterWidth-codeSize)/2, 50, (posterWidth-codeSize)/2+codeSize, 50+codeSize)
	draw.Draw(canvas, qrRect, qrImg, qrImg.Bounds().Min, draw.Src)

	drawCentered(canvas, p.Title, 30)
	drawCentered(canvas, p.Value, 385)

	instruction := p.Instruction
	if instruction == "" {
		instruction = "Scan this QR code with the app"
	}
	drawCentered(canvas, instruction, 420)

	return canvas, nil
}

// WriteFile renders the poster and writes it as a PNG
func (p Poster) WriteFile(path string) error {
	img, err := p.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// Filename returns a conventional poster filename for a step
func Filename(stepID int, name string) string {
	slug := regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "step"
	}
	return fmt.Sprintf("step_%02d_%s.png", stepID, slug)
}

func drawCentered(dst draw.Image, text string, baselineY int) {
	if text == "" {
		return
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((posterWidth-width)/2, baselineY)
	d.DrawString(text)
}
