// Package card renders the printable memory card: the date, the
// night's closing line, and a QR code linking back to the stored
// memory.
package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// Width matches the 58mm thermal printer head at 8 dots/mm.
	Width = 384

	qrSize     = 160
	marginX    = 16
	lineHeight = 18
	// Face7x13 is 7px wide; leave the margins out of the wrap budget.
	maxLineChars = (Width - 2*marginX) / 7
)

// Render draws the card as a PNG. The QR code encodes memoryURL so
// the owner can revisit the stored memory later.
func Render(date, closingLine, memoryURL string) ([]byte, error) {
	lines := wrap(closingLine, maxLineChars)

	textHeight := (len(lines) + 1) * lineHeight
	height := marginX + lineHeight + textHeight + qrSize + 2*marginX

	img := image.NewRGBA(image.Rect(0, 0, Width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	y := marginX + lineHeight
	drawText(img, date, marginX, y)
	y += 2 * lineHeight
	for _, line := range lines {
		drawText(img, line, marginX, y)
		y += lineHeight
	}

	qr, err := qrcode.New(memoryURL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	qrImg := qr.Image(qrSize)
	qrRect := image.Rect((Width-qrSize)/2, y+marginX, (Width+qrSize)/2, y+marginX+qrSize)
	draw.Draw(img, qrRect, qrImg, qrImg.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(img draw.Image, text string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// wrap breaks text into lines of at most maxChars, splitting on
// spaces. Words longer than maxChars are hard-cut.
func wrap(text string, maxChars int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		for len(word) > maxChars {
			if line.Len() > 0 {
				lines = append(lines, line.String())
				line.Reset()
			}
			lines = append(lines, word[:maxChars])
			word = word[maxChars:]
		}
		if line.Len() == 0 {
			line.WriteString(word)
			continue
		}
		if line.Len()+1+len(word) > maxChars {
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			continue
		}
		line.WriteString(" ")
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
