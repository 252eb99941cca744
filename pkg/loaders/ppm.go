package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/film"
)

// ErrPPMFormat is returned for malformed or unsupported PPM data
var ErrPPMFormat = errors.New("invalid PPM data")

// SavePPM writes img as a binary (P6) PPM with maxval 255.
// Channels are clamped to [0,1] and quantized linearly without gamma.
func SavePPM(w io.Writer, img *film.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width(), img.Height()); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}

	row := make([]byte, 3*img.Width())
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := film.Saturate(img.At(x, y))
			row[3*x] = quantize(c.X)
			row[3*x+1] = quantize(c.Y)
			row[3*x+2] = quantize(c.Z)
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("failed to write PPM pixels: %w", err)
		}
	}
	return bw.Flush()
}

// SavePPMFile writes img to path as a binary PPM
func SavePPMFile(path string, img *film.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PPM file: %w", err)
	}
	if err := SavePPM(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadPPMFile reads a P6 or P3 PPM from path
func LoadPPMFile(path string) (*film.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PPM file: %w", err)
	}
	defer file.Close()
	return LoadPPM(file)
}

// LoadPPM decodes binary (P6) or ASCII (P3) PPM data into linear [0,1] values.
// Header comments starting with '#' are skipped.
func LoadPPM(r io.Reader) (*film.Image, error) {
	br := bufio.NewReader(r)

	magic, err := ppmToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P6" && magic != "P3" {
		return nil, fmt.Errorf("%w: unsupported magic %q", ErrPPMFormat, magic)
	}

	var header [3]int
	for i := range header {
		tok, err := ppmToken(br)
		if err != nil {
			return nil, err
		}
		header[i], err = strconv.Atoi(tok)
		if err != nil || header[i] < 0 {
			return nil, fmt.Errorf("%w: bad header value %q", ErrPPMFormat, tok)
		}
	}
	width, height, maxval := header[0], header[1], header[2]
	if maxval <= 0 || maxval > 65535 {
		return nil, fmt.Errorf("%w: maxval %d", ErrPPMFormat, maxval)
	}

	img := film.NewImage(width, height)
	full := float64(maxval)

	if magic == "P3" {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				var ch [3]float64
				for c := range ch {
					tok, err := ppmToken(br)
					if err != nil {
						return nil, err
					}
					v, err := strconv.Atoi(tok)
					if err != nil {
						return nil, fmt.Errorf("%w: bad sample %q", ErrPPMFormat, tok)
					}
					ch[c] = float64(v) / full
				}
				img.Set(x, y, core.NewVec3(ch[0], ch[1], ch[2]))
			}
		}
		return img, nil
	}

	// P6: exactly one whitespace byte separates the header from the raster,
	// and ppmToken already consumed it.
	bytesPerSample := 1
	if maxval > 255 {
		bytesPerSample = 2
	}
	row := make([]byte, 3*width*bytesPerSample)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("%w: truncated raster: %v", ErrPPMFormat, err)
		}
		for x := 0; x < width; x++ {
			var ch [3]float64
			for c := range ch {
				i := (3*x + c) * bytesPerSample
				v := int(row[i])
				if bytesPerSample == 2 {
					v = v<<8 | int(row[i+1])
				}
				ch[c] = float64(v) / full
			}
			img.Set(x, y, core.NewVec3(ch[0], ch[1], ch[2]))
		}
	}
	return img, nil
}

func quantize(x float64) byte {
	return byte(x*255 + 0.5)
}

// ppmToken returns the next whitespace-delimited header token, skipping comments.
// The single whitespace byte after the token is consumed.
func ppmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", fmt.Errorf("%w: unexpected end of header", ErrPPMFormat)
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", fmt.Errorf("%w: unterminated comment", ErrPPMFormat)
			}
		case isPPMSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func isPPMSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
