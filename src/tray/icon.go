package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

const iconSize = 32

var (
	frameColor = color.NRGBA{0x00, 0x78, 0xd4, 0xff}
	textColor  = color.NRGBA{0x33, 0x33, 0x33, 0xff}
)

// iconImage draws a dashed selection frame around three text lines.
func iconImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	for i := 2; i < iconSize-2; i++ {
		if (i/3)%2 == 1 {
			continue
		}
		img.SetNRGBA(i, 2, frameColor)
		img.SetNRGBA(i, iconSize-3, frameColor)
		img.SetNRGBA(2, i, frameColor)
		img.SetNRGBA(iconSize-3, i, frameColor)
	}
	for _, y := range []int{10, 15, 20} {
		draw.Draw(img, image.Rect(7, y, iconSize-7-(y-10), y+2), &image.Uniform{textColor}, image.Point{}, draw.Src)
	}
	return img
}

// iconBytes returns the tray icon as an ICO file holding one PNG image.
// Windows accepts PNG payloads in ICO containers; other platforms read the
// PNG directly.
func iconBytes(ico bool) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := imaging.Encode(&pngBuf, iconImage(), imaging.PNG); err != nil {
		return nil, err
	}
	if !ico {
		return pngBuf.Bytes(), nil
	}

	var out bytes.Buffer
	// ICONDIR
	binary.Write(&out, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	out.Write([]byte{iconSize, iconSize, 0, 0})
	binary.Write(&out, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&out, binary.LittleEndian, uint16(32)) // bit count
	binary.Write(&out, binary.LittleEndian, uint32(pngBuf.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(6+16))
	out.Write(pngBuf.Bytes())
	return out.Bytes(), nil
}
