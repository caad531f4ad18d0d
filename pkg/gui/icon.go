package gui

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOutline = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	iconOnline  = color.NRGBA{R: 0x2e, G: 0xa0, B: 0x43, A: 0xff}
	iconOffline = color.NRGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
)

var (
	iconsOnce sync.Once
	icons     map[bool][]byte
)

// trayIcon returns the tray icon in the format systray expects on this
// platform: ICO on Windows, PNG elsewhere.
func trayIcon(online bool) []byte {
	iconsOnce.Do(func() {
		icons = map[bool][]byte{
			true:  encodeIcon(drawBattery(iconOnline), runtime.GOOS),
			false: encodeIcon(drawBattery(iconOffline), runtime.GOOS),
		}
	})
	return icons[online]
}

// drawBattery draws a horizontal battery glyph filled with fill.
func drawBattery(fill color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	body := image.Rect(2, 9, 27, 23)
	for y := body.Min.Y; y < body.Max.Y; y++ {
		for x := body.Min.X; x < body.Max.X; x++ {
			edge := x < body.Min.X+2 || x >= body.Max.X-2 || y < body.Min.Y+2 || y >= body.Max.Y-2
			switch {
			case edge:
				img.Set(x, y, iconOutline)
			case x >= body.Min.X+3 && x < body.Max.X-3 && y >= body.Min.Y+3 && y < body.Max.Y-3:
				img.Set(x, y, fill)
			}
		}
	}

	// Terminal.
	for y := 13; y < 19; y++ {
		for x := 27; x < 30; x++ {
			img.Set(x, y, iconOutline)
		}
	}

	return img
}

func encodeIcon(img image.Image, goos string) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory NRGBA image cannot fail.
		panic(err)
	}
	if goos == "windows" {
		return wrapICO(buf.Bytes(), img.Bounds().Dx(), img.Bounds().Dy())
	}
	return buf.Bytes()
}

// wrapICO stores a PNG as the single image of an ICO file.
func wrapICO(pngData []byte, width, height int) []byte {
	const headerSize = 6 + 16

	var buf bytes.Buffer
	// ICONDIR: reserved, type 1 (icon), one image.
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY.
	buf.WriteByte(byte(width))
	buf.WriteByte(byte(height))
	buf.WriteByte(0) // palette size
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // color planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerSize))
	buf.Write(pngData)

	return buf.Bytes()
}
