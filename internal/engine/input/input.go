// Package input translates SDL2 events into viewer controls.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Pan keys, as (forward, right, up) contributions.
var panKeys = map[sdl.Scancode][3]float32{
	sdl.SCANCODE_W: {1, 0, 0},
	sdl.SCANCODE_S: {-1, 0, 0},
	sdl.SCANCODE_D: {0, 1, 0},
	sdl.SCANCODE_A: {0, -1, 0},
	sdl.SCANCODE_E: {0, 0, 1},
	sdl.SCANCODE_Q: {0, 0, -1},
}

// Frame is the input collected since the previous Update.
type Frame struct {
	Quit       bool
	Resized    bool
	Width      int
	Height     int
	DragX      float32 // pointer motion while the left button is held, pixels
	DragY      float32
	Zoom       float32 // wheel steps, positive toward the target
	Screenshot bool
	Pan        [3]float32 // forward, right, up for held keys
}

// Input tracks button and key state across polls.
type Input struct {
	frame    Frame
	dragging bool
	held     map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{held: make(map[sdl.Scancode]bool)}
}

// Update polls SDL events and returns the collected frame input.
func (i *Input) Update() Frame {
	i.begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.end()
}

func (i *Input) begin() {
	i.frame = Frame{}
}

func (i *Input) end() Frame {
	for code, down := range i.held {
		if !down {
			continue
		}
		if d, ok := panKeys[code]; ok {
			for k := range d {
				i.frame.Pan[k] += d[k]
			}
		}
	}
	return i.frame
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.frame.Quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.frame.Resized = true
			i.frame.Width = int(e.Data1)
			i.frame.Height = int(e.Data2)
		}

	case *sdl.KeyboardEvent:
		code := e.Keysym.Scancode
		switch e.Type {
		case sdl.KEYDOWN:
			i.held[code] = true
			if e.Repeat != 0 {
				return
			}
			switch code {
			case sdl.SCANCODE_ESCAPE:
				i.frame.Quit = true
			case sdl.SCANCODE_F12:
				i.frame.Screenshot = true
			}
		case sdl.KEYUP:
			i.held[code] = false
		}

	case *sdl.MouseButtonEvent:
		if e.Button != sdl.BUTTON_LEFT {
			return
		}
		i.dragging = e.Type == sdl.MOUSEBUTTONDOWN

	case *sdl.MouseMotionEvent:
		if i.dragging || e.State&sdl.ButtonLMask() != 0 {
			i.frame.DragX += float32(e.XRel)
			i.frame.DragY += float32(e.YRel)
		}

	case *sdl.MouseWheelEvent:
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		i.frame.Zoom += dy
	}
}
