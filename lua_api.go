// lua_api.go - the scripting surface bound into every mode's interpreter:
// surface userdata, the luma namespace (draw/transform/image/font tables and
// the Surface constructor), and the shared context object under its two
// names.
package main

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

// luaBindings holds the per-interpreter handles that need refreshing each
// frame (audio buffers, MIDI table, knob globals) plus the userdata passed
// into setup/draw.
type luaBindings struct {
	screenUD *lua.LUserData
	etcUD    *lua.LUserData

	audioIn    *lua.LTable
	audioLeft  *lua.LTable
	audioRight *lua.LTable
	audioInR   *lua.LTable
	midiNotes  *lua.LTable

	// scratch backs unknown context fields so modes can hang private state
	// off the context object; it dies with the interpreter on reload.
	scratch *lua.LTable

	picker   *lua.LFunction
	pickerBG *lua.LFunction
	pickerFG *lua.LFunction
}

// bindModeAPI wires the complete scripting API into a fresh interpreter.
// Everything a mode can name is registered here, before its top-level code
// runs: the canonical screen, the context object (as both "etc" and
// "context"), bare knob globals, the "luma" namespace (draw/transform/
// image/font tables plus the Surface constructor — namespaced so a mode's
// own draw hook cannot shadow them), and the mode's directory path.
func bindModeAPI(L *lua.LState, screen *Surface, etc *Etc, modeDir string) *luaBindings {
	b := &luaBindings{
		audioIn:    L.NewTable(),
		audioLeft:  L.NewTable(),
		audioRight: L.NewTable(),
		audioInR:   L.NewTable(),
		midiNotes:  L.NewTable(),
		scratch:    L.NewTable(),
	}

	mt := L.NewTypeMetatable("surface")
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), surfaceMethods))

	fontMT := L.NewTypeMetatable("fontface")
	L.SetField(fontMT, "__index", L.SetFuncs(L.NewTable(), fontMethods))

	b.screenUD = wrapSurface(L, screen)

	b.picker = L.NewFunction(pickerFunc(etc.ColorPicker))
	b.pickerBG = L.NewFunction(pickerFunc(etc.ColorPickerBG))
	b.pickerFG = L.NewFunction(pickerFunc(etc.ColorPickerFG))

	ctxMT := L.NewTypeMetatable("context")
	L.SetField(ctxMT, "__index", L.NewFunction(b.contextIndex(etc)))
	L.SetField(ctxMT, "__newindex", L.NewFunction(b.contextNewIndex(etc)))
	b.etcUD = L.NewUserData()
	b.etcUD.Value = etc
	L.SetMetatable(b.etcUD, ctxMT)

	api := L.NewTable()
	L.SetField(api, "draw", L.SetFuncs(L.NewTable(), drawFuncs))
	L.SetField(api, "transform", L.SetFuncs(L.NewTable(), transformFuncs))
	L.SetField(api, "image", L.SetFuncs(L.NewTable(), imageFuncs))
	L.SetField(api, "font", L.SetFuncs(L.NewTable(), fontFuncs))
	L.SetField(api, "Surface", L.NewFunction(surfaceNew))

	L.SetGlobal("screen", b.screenUD)
	L.SetGlobal("etc", b.etcUD)
	L.SetGlobal("context", b.etcUD)
	L.SetGlobal("luma", api)
	L.SetGlobal("mode_dir", lua.LString(modeDir))

	return b
}

// refreshKnobs pushes the live knob values into the bare-name globals.
func (b *luaBindings) refreshKnobs(L *lua.LState, etc *Etc) {
	L.SetGlobal("knob1", lua.LNumber(etc.Knob1))
	L.SetGlobal("knob2", lua.LNumber(etc.Knob2))
	L.SetGlobal("knob3", lua.LNumber(etc.Knob3))
	L.SetGlobal("knob4", lua.LNumber(etc.Knob4))
	L.SetGlobal("knob5", lua.LNumber(etc.Knob5))
}

// refreshAudio mirrors the audio buffers and MIDI note table into the cached
// Lua tables (1-based).
func (b *luaBindings) refreshAudio(etc *Etc) {
	for i := 0; i < AUDIO_BUFFER_SIZE; i++ {
		b.audioIn.RawSetInt(i+1, lua.LNumber(etc.AudioIn[i]))
		b.audioLeft.RawSetInt(i+1, lua.LNumber(etc.AudioLeft[i]))
		b.audioRight.RawSetInt(i+1, lua.LNumber(etc.AudioRight[i]))
		b.audioInR.RawSetInt(i+1, lua.LNumber(etc.AudioInR[i]))
	}
	for i, v := range etc.MIDINotes {
		b.midiNotes.RawSetInt(i+1, lua.LNumber(v))
	}
}

func (b *luaBindings) contextIndex(etc *Etc) lua.LGFunction {
	return func(L *lua.LState) int {
		key := L.CheckString(2)
		switch key {
		case "knob1":
			L.Push(lua.LNumber(etc.Knob1))
		case "knob2":
			L.Push(lua.LNumber(etc.Knob2))
		case "knob3":
			L.Push(lua.LNumber(etc.Knob3))
		case "knob4":
			L.Push(lua.LNumber(etc.Knob4))
		case "knob5":
			L.Push(lua.LNumber(etc.Knob5))
		case "audio_in":
			L.Push(b.audioIn)
		case "audio_left":
			L.Push(b.audioLeft)
		case "audio_right":
			L.Push(b.audioRight)
		case "audio_in_r":
			L.Push(b.audioInR)
		case "audio_peak":
			L.Push(lua.LNumber(etc.AudioPeak))
		case "audio_peak_r":
			L.Push(lua.LNumber(etc.AudioPeakR))
		case "audio_trig":
			L.Push(lua.LBool(etc.AudioTrig))
		case "trig":
			L.Push(lua.LBool(etc.Trig))
		case "mode":
			L.Push(lua.LString(etc.Mode))
		case "xres":
			L.Push(lua.LNumber(etc.XRes))
		case "yres":
			L.Push(lua.LNumber(etc.YRes))
		case "audio_level":
			L.Push(lua.LNumber(etc.AudioLevel))
		case "audio_frequency":
			L.Push(lua.LNumber(etc.AudioFrequency))
		case "audio_type":
			L.Push(lua.LString(etc.AudioType))
		case "frame_count":
			L.Push(lua.LNumber(etc.FrameCount))
		case "midi_note":
			L.Push(lua.LNumber(etc.MIDINote))
		case "midi_velocity":
			L.Push(lua.LNumber(etc.MIDIVelocity))
		case "midi_note_new":
			L.Push(lua.LBool(etc.MIDINoteNew))
		case "midi_notes":
			L.Push(b.midiNotes)
		case "midi_clk":
			L.Push(lua.LNumber(etc.MIDIClk))
		case "bg_color":
			L.Push(colorToLua(L, etc.BgColor))
		case "fg_color":
			L.Push(colorToLua(L, etc.FgColor))
		case "auto_clear":
			L.Push(lua.LBool(etc.AutoClear))
		case "fps":
			L.Push(lua.LNumber(etc.FPS))
		case "screen":
			L.Push(b.screenUD)
		case "color_picker":
			L.Push(b.picker)
		case "color_picker_bg":
			L.Push(b.pickerBG)
		case "color_picker_fg":
			L.Push(b.pickerFG)
		default:
			L.Push(b.scratch.RawGetString(key))
		}
		return 1
	}
}

func (b *luaBindings) contextNewIndex(etc *Etc) lua.LGFunction {
	return func(L *lua.LState) int {
		key := L.CheckString(2)
		v := L.Get(3)
		switch key {
		case "bg_color":
			etc.BgColor = colorFromLV(L, v)
		case "fg_color":
			etc.FgColor = colorFromLV(L, v)
		case "auto_clear":
			etc.AutoClear = lua.LVAsBool(v)
		case "mode":
			etc.Mode = lua.LVAsString(v)
		case "audio_level":
			etc.AudioLevel = float64(lua.LVAsNumber(v))
		case "audio_frequency":
			etc.AudioFrequency = float64(lua.LVAsNumber(v))
		case "audio_type":
			etc.AudioType = lua.LVAsString(v)
		case "midi_note_new":
			etc.MIDINoteNew = lua.LVAsBool(v)
		case "audio_trig", "trig":
			on := lua.LVAsBool(v)
			etc.AudioTrig = on
			etc.Trig = on
		case "audio_peak":
			etc.AudioPeak = float64(lua.LVAsNumber(v))
		case "audio_peak_r":
			etc.AudioPeakR = float64(lua.LVAsNumber(v))
		case "frame_count":
			etc.FrameCount = int(lua.LVAsNumber(v))
		case "midi_note":
			etc.MIDINote = int(lua.LVAsNumber(v))
		case "midi_velocity":
			etc.MIDIVelocity = int(lua.LVAsNumber(v))
		case "midi_clk":
			etc.MIDIClk = int(lua.LVAsNumber(v))
		case "knob1", "knob2", "knob3", "knob4", "knob5":
			etc.SetKnob(int(key[4]-'0'), float64(lua.LVAsNumber(v)))
		default:
			b.scratch.RawSetString(key, v)
		}
		return 0
	}
}

func pickerFunc(pick func(float64) Color) lua.LGFunction {
	return func(L *lua.LState) int {
		// Callable as etc:color_picker(v) or etc.color_picker(v).
		n := 1
		if _, ok := L.Get(1).(*lua.LUserData); ok {
			n = 2
		}
		c := pick(float64(L.CheckNumber(n)))
		L.Push(colorToLua(L, c))
		return 1
	}
}

// --- surface userdata ---

func wrapSurface(L *lua.LState, s *Surface) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = s
	L.SetMetatable(ud, L.GetTypeMetatable("surface"))
	return ud
}

func checkSurfaceArg(L *lua.LState, n int) *Surface {
	ud := L.CheckUserData(n)
	if s, ok := ud.Value.(*Surface); ok {
		return s
	}
	L.ArgError(n, "surface expected")
	return nil
}

func surfaceNew(L *lua.LState) int {
	w := L.CheckInt(1)
	h := L.CheckInt(2)
	if lua.LVAsBool(L.Get(3)) {
		L.Push(wrapSurface(L, NewSurfaceAlpha(w, h)))
	} else {
		L.Push(wrapSurface(L, NewSurface(w, h)))
	}
	return 1
}

var surfaceMethods = map[string]lua.LGFunction{
	"fill": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		t := L.CheckTable(2)
		c, alpha := colorAlphaFromTable(t)
		s.FillAlpha(c, alpha)
		return 0
	},
	"get_size": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		L.Push(lua.LNumber(s.Width()))
		L.Push(lua.LNumber(s.Height()))
		return 2
	},
	"get_width": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkSurfaceArg(L, 1).Width()))
		return 1
	},
	"get_height": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkSurfaceArg(L, 1).Height()))
		return 1
	},
	"get_at": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		x, y := xyFromLV(L, L.Get(2))
		r, g, b, a := s.GetAt(x, y)
		t := L.NewTable()
		t.RawSetInt(1, lua.LNumber(r))
		t.RawSetInt(2, lua.LNumber(g))
		t.RawSetInt(3, lua.LNumber(b))
		t.RawSetInt(4, lua.LNumber(a))
		L.Push(t)
		return 1
	},
	"set_at": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		x, y := xyFromLV(L, L.Get(2))
		s.SetAt(x, y, colorFromLV(L, L.Get(3)))
		return 0
	},
	"blit": func(L *lua.LState) int {
		dst := checkSurfaceArg(L, 1)
		src := checkSurfaceArg(L, 2)
		x, y := xyFromLV(L, L.Get(3))
		var area *Rect
		if t, ok := L.Get(4).(*lua.LTable); ok {
			r := rectFromTable(L, t)
			area = &r
		}
		dst.Blit(src, x, y, area)
		return 0
	},
	"get_rect": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		r := s.GetRect()
		if opts, ok := L.Get(2).(*lua.LTable); ok {
			if v := opts.RawGetString("center"); v != lua.LNil {
				x, y := xyFromLV(L, v)
				r = r.CenteredAt(x, y)
			} else if v := opts.RawGetString("topleft"); v != lua.LNil {
				x, y := xyFromLV(L, v)
				r = r.TopLeftAt(x, y)
			} else if v := opts.RawGetString("topright"); v != lua.LNil {
				x, y := xyFromLV(L, v)
				r = r.TopRightAt(x, y)
			}
		}
		L.Push(rectToLua(L, r))
		return 1
	},
	"copy": func(L *lua.LState) int {
		L.Push(wrapSurface(L, checkSurfaceArg(L, 1).Clone()))
		return 1
	},
	"array3": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		data := s.Array3()
		t := L.NewTable()
		for i, v := range data {
			t.RawSetInt(i+1, lua.LNumber(v))
		}
		L.Push(t)
		return 1
	},
	"load_array3": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		t := L.CheckTable(2)
		n := t.Len()
		data := make([]uint8, n)
		for i := 1; i <= n; i++ {
			data[i-1] = clampChannel(float64(lua.LVAsNumber(t.RawGetInt(i))))
		}
		s.LoadArray3(data)
		return 0
	},
}

// --- draw table ---

var drawFuncs = map[string]lua.LGFunction{
	"circle": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		x, y := xyFromLV(L, L.Get(3))
		radius := L.CheckInt(4)
		s.Circle(c, x, y, radius, L.OptInt(5, 0))
		return 0
	},
	"rect": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		r := rectFromTable(L, L.CheckTable(3))
		s.Rectangle(c, r, L.OptInt(4, 0))
		return 0
	},
	"ellipse": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		r := rectFromTable(L, L.CheckTable(3))
		s.Ellipse(c, r, L.OptInt(4, 0))
		return 0
	},
	"line": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		x0, y0 := xyFromLV(L, L.Get(3))
		x1, y1 := xyFromLV(L, L.Get(4))
		s.Line(c, x0, y0, x1, y1, L.OptInt(5, 1))
		return 0
	},
	"polygon": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		pts := pointsFromTable(L, L.CheckTable(3))
		s.Polygon(c, pts, L.OptInt(4, 0))
		return 0
	},
	"arc": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		c := colorFromLV(L, L.Get(2))
		r := rectFromTable(L, L.CheckTable(3))
		start := float64(L.CheckNumber(4))
		stop := float64(L.CheckNumber(5))
		s.Arc(c, r, start, stop, L.OptInt(6, 1))
		return 0
	},
}

// --- transform table ---

var transformFuncs = map[string]lua.LGFunction{
	"scale": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		w, h := xyFromLV(L, L.Get(2))
		L.Push(wrapSurface(L, s.Scale(w, h)))
		return 1
	},
	"smoothscale": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		w, h := xyFromLV(L, L.Get(2))
		L.Push(wrapSurface(L, s.SmoothScale(w, h)))
		return 1
	},
	"rotate": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		L.Push(wrapSurface(L, s.Rotate(float64(L.CheckNumber(2)))))
		return 1
	},
	"flip": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		L.Push(wrapSurface(L, s.Flip(lua.LVAsBool(L.Get(2)), lua.LVAsBool(L.Get(3)))))
		return 1
	},
}

// --- image table ---

var imageFuncs = map[string]lua.LGFunction{
	"load": func(L *lua.LState) int {
		L.Push(wrapSurface(L, LoadImage(L.CheckString(1))))
		return 1
	},
	"save": func(L *lua.LState) int {
		s := checkSurfaceArg(L, 1)
		if err := SaveImage(s, L.CheckString(2)); err != nil {
			L.Push(lua.LFalse)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LTrue)
		return 1
	},
}

// --- font table ---

var fontFuncs = map[string]lua.LGFunction{
	"load": func(L *lua.LState) int {
		path := L.OptString(1, "")
		size := L.OptInt(2, 12)
		f := LoadFont(path, size)
		ud := L.NewUserData()
		ud.Value = f
		L.SetMetatable(ud, L.GetTypeMetatable("fontface"))
		L.Push(ud)
		return 1
	},
}

var fontMethods = map[string]lua.LGFunction{
	"render": func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		f, ok := ud.Value.(*Font)
		if !ok {
			L.ArgError(1, "font expected")
			return 0
		}
		text := L.CheckString(2)
		c := colorFromLV(L, L.Get(3))
		var bg *Color
		if t, ok := L.Get(4).(*lua.LTable); ok {
			bc := colorFromTable(t)
			bg = &bc
		}
		L.Push(wrapSurface(L, f.Render(text, c, bg)))
		return 1
	},
}

// --- conversion helpers ---

func clampChannel(v float64) uint8 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func colorFromTable(t *lua.LTable) Color {
	c, _ := colorAlphaFromTable(t)
	return c
}

// colorAlphaFromTable reads a 3+ element color sequence. Only the first
// three channels drive drawing; the fourth is surfaced for fill on alpha
// surfaces and defaults to opaque.
func colorAlphaFromTable(t *lua.LTable) (Color, uint8) {
	c := Color{
		R: clampChannel(float64(lua.LVAsNumber(t.RawGetInt(1)))),
		G: clampChannel(float64(lua.LVAsNumber(t.RawGetInt(2)))),
		B: clampChannel(float64(lua.LVAsNumber(t.RawGetInt(3)))),
	}
	alpha := uint8(0xFF)
	if v := t.RawGetInt(4); v != lua.LNil {
		alpha = clampChannel(float64(lua.LVAsNumber(v)))
	}
	return c, alpha
}

func colorFromLV(L *lua.LState, v lua.LValue) Color {
	if t, ok := v.(*lua.LTable); ok {
		return colorFromTable(t)
	}
	L.RaiseError("color expected (got %s)", v.Type().String())
	return Color{}
}

func colorToLua(L *lua.LState, c Color) *lua.LTable {
	t := L.NewTable()
	t.RawSetInt(1, lua.LNumber(c.R))
	t.RawSetInt(2, lua.LNumber(c.G))
	t.RawSetInt(3, lua.LNumber(c.B))
	return t
}

// xyFromLV reads a coordinate pair from either a positional {x, y} table or
// anything carrying x/y fields (such as the tables get_rect returns).
func xyFromLV(L *lua.LState, v lua.LValue) (int, int) {
	t, ok := v.(*lua.LTable)
	if !ok {
		L.RaiseError("position expected (got %s)", v.Type().String())
		return 0, 0
	}
	if fx := t.RawGetString("x"); fx != lua.LNil {
		return luaInt(fx), luaInt(t.RawGetString("y"))
	}
	return luaInt(t.RawGetInt(1)), luaInt(t.RawGetInt(2))
}

// rectFromTable reads {x, y, w, h} positionally or by field name.
func rectFromTable(L *lua.LState, t *lua.LTable) Rect {
	if fx := t.RawGetString("x"); fx != lua.LNil {
		return Rect{
			X: luaInt(fx),
			Y: luaInt(t.RawGetString("y")),
			W: luaInt(t.RawGetString("w")),
			H: luaInt(t.RawGetString("h")),
		}
	}
	return Rect{
		X: luaInt(t.RawGetInt(1)),
		Y: luaInt(t.RawGetInt(2)),
		W: luaInt(t.RawGetInt(3)),
		H: luaInt(t.RawGetInt(4)),
	}
}

func rectToLua(L *lua.LState, r Rect) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("x", lua.LNumber(r.X))
	t.RawSetString("y", lua.LNumber(r.Y))
	t.RawSetString("w", lua.LNumber(r.W))
	t.RawSetString("h", lua.LNumber(r.H))
	return t
}

func pointsFromTable(L *lua.LState, t *lua.LTable) [][2]int {
	n := t.Len()
	pts := make([][2]int, 0, n)
	for i := 1; i <= n; i++ {
		x, y := xyFromLV(L, t.RawGetInt(i))
		pts = append(pts, [2]int{x, y})
	}
	return pts
}

// luaInt truncates a Lua number toward zero, the way mode scripts expect
// fractional coordinates to behave.
func luaInt(v lua.LValue) int {
	return int(math.Trunc(float64(lua.LVAsNumber(v))))
}
