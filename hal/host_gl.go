//go:build gl && cgo

package hal

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"sharpengine/engine/geom"
	"sharpengine/engine/raster"
	"sharpengine/internal/buildinfo"
)

//go:embed shaders/position.vert
var vertexSource string

//go:embed shaders/flat.frag
var fragmentSource string

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

// RunGL opens an OpenGL 3.3 core window and draws the uploaded triangles
// from a single vertex buffer. Must be called from the main goroutine.
func RunGL(newApp AppFunc, cfg WindowConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1024, 768
	}
	if cfg.Title == "" {
		cfg.Title = "SharpEngine"
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title+" ("+buildinfo.Short()+")", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	r, err := newGLRenderer(win)
	if err != nil {
		return err
	}
	defer r.release()

	kbd := newHostKeyboard()
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Release {
			return
		}
		press := action == glfw.Press
		switch key {
		case glfw.KeyEscape:
			kbd.emit(KeyEvent{Code: KeyEscape, Press: press})
		case glfw.KeyEnter:
			kbd.emit(KeyEvent{Code: KeyEnter, Press: press})
		}
	})
	win.SetCharCallback(func(_ *glfw.Window, ch rune) {
		kbd.emit(KeyEvent{Press: true, Rune: ch})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
	})

	h := newHostHAL(nil, r, kbd, nil)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	for !r.ShouldClose() {
		if done, err := runStep(step); done {
			return err
		}
	}
	return nil
}

// glRenderer keeps one VAO/VBO pair. Upload streams positions into the
// buffer; DrawFrame draws them and swaps.
type glRenderer struct {
	win     *glfw.Window
	program uint32
	vao     uint32
	vbo     uint32
	fillLoc int32

	scratch []float32
	count   int32
}

func newGLRenderer(win *glfw.Window) (*glRenderer, error) {
	program, err := compileProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	r := &glRenderer{win: win, program: program}
	r.fillLoc = gl.GetUniformLocation(program, gl.Str("fill\x00"))

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.UseProgram(program)
	r.SetFill(raster.RGB(0xFF, 0xFF, 0xFF))
	gl.ClearColor(0, 0, 0, 1)
	return r, nil
}

func (r *glRenderer) Upload(pts []geom.Point) {
	r.scratch = geom.Flatten(r.scratch[:0], pts)
	n := len(pts) - len(pts)%3
	r.count = int32(n)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	var data unsafe.Pointer
	if len(r.scratch) > 0 {
		data = gl.Ptr(r.scratch)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(r.scratch)*4, data, gl.STREAM_DRAW)
}

func (r *glRenderer) SetFill(c raster.Color) {
	cr, cg, cb, _ := c.Floats()
	gl.UseProgram(r.program)
	gl.Uniform3f(r.fillLoc, cr, cg, cb)
}

func (r *glRenderer) SetMode(m raster.Mode) {
	if m == raster.ModeWireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

func (r *glRenderer) DrawFrame() error {
	glfw.PollEvents()
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.program)
	gl.BindVertexArray(r.vao)
	if r.count > 0 {
		gl.DrawArrays(gl.TRIANGLES, 0, r.count)
	}
	gl.BindVertexArray(0)
	r.win.SwapBuffers()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl: error 0x%x", code)
	}
	return nil
}

func (r *glRenderer) ShouldClose() bool { return r.win.ShouldClose() }

func (r *glRenderer) release() {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		log := make([]byte, n+1)
		gl.GetProgramInfoLog(program, n, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}
	return program, nil
}

func compileShader(src string, kind uint32) (uint32, error) {
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		log := make([]byte, n+1)
		gl.GetShaderInfoLog(sh, n, nil, &log[0])
		gl.DeleteShader(sh)
		return 0, errors.New(string(log))
	}
	return sh, nil
}
