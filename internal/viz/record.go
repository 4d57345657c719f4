package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	cellPixelsX = 8
	cellPixelsY = 16
)

var recordPalette = color.Palette{color.Black, color.White}

// Recorder rasterises canvas snapshots into GIF frames.
type Recorder struct {
	frames []*image.Paletted
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture appends the current canvas contents as one frame.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellPixelsX, c.Height*cellPixelsY), recordPalette)
	dotW, dotH := cellPixelsX/2, cellPixelsY/4
	sw, sh := c.Size()
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the captured frames as a looping GIF. Nothing is written
// when no frame was captured.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
