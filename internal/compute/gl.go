package compute

import (
	"context"
	_ "embed"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"go.uber.org/zap"
)

var (
	//go:embed shaders/heatmap.vert
	vertexSource string
	//go:embed shaders/heatmap.frag
	fragmentSource string
)

var uniformNames = []string{"uN", "uMode", "uChromatic", "uC", "uRes", "uPan", "uScale", "uVScale", "uMinR"}

// GLEvaluator renders the heatmap shader into an offscreen framebuffer and
// reads it back. All calls must happen on the thread that owns the context.
type GLEvaluator struct {
	log *zap.Logger

	program  uint32
	vao, vbo uint32
	fbo, tex uint32
	w, h     int
	loc      map[string]int32
	scratch  []byte

	renderer    string
	initialized bool
}

func NewGLEvaluator(log *zap.Logger) *GLEvaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &GLEvaluator{log: log.Named("compute"), loc: make(map[string]int32)}
}

func (g *GLEvaluator) Name() string     { return "gl" }
func (g *GLEvaluator) Available() bool  { return g.initialized }
func (g *GLEvaluator) Renderer() string { return g.renderer }

// Init loads GL entry points, builds the program and the full-screen quad.
// A context must be current.
func (g *GLEvaluator) Init() error {
	if g.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: init opengl: %v", core.ErrEvaluatorUnavailable, err)
	}
	g.renderer = gl.GoStr(gl.GetString(gl.RENDERER))

	program, err := buildProgram(vertexSource, fragmentSource)
	if err != nil {
		g.log.Error("heatmap shader failed", zap.Error(err))
		return err
	}
	g.program = program
	for _, n := range uniformNames {
		g.loc[n] = gl.GetUniformLocation(program, gl.Str(n+"\x00"))
	}

	quad := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 0, 0)
	gl.BindVertexArray(0)

	g.initialized = true
	return nil
}

// RendererString is GL_RENDERER of the current context, for hardware
// detection. Returns "" when GL cannot be loaded.
func RendererString() string {
	if err := gl.Init(); err != nil {
		return ""
	}
	return gl.GoStr(gl.GetString(gl.RENDERER))
}

func (g *GLEvaluator) resize(w, h int) {
	if g.fbo != 0 && g.w == w && g.h == h {
		return
	}
	g.releaseTarget()
	gl.GenTextures(1, &g.tex)
	gl.BindTexture(gl.TEXTURE_2D, g.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.GenFramebuffers(1, &g.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, g.tex, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	g.w, g.h = w, h
	g.scratch = make([]byte, 4*w*h)
}

func (g *GLEvaluator) Evaluate(_ context.Context, dst *image.RGBA, u *Uniforms) error {
	if !g.initialized {
		return core.ErrEvaluatorUnavailable
	}
	clear(dst.Pix)
	if u.Empty() {
		return nil
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	g.resize(w, h)

	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Disable(gl.BLEND)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(g.program)
	n := min(len(u.Charges), MaxCharges)
	gl.Uniform1i(g.loc["uN"], int32(n))
	gl.Uniform1i(g.loc["uMode"], int32(u.Mode))
	chromatic := int32(0)
	if u.Chromatic {
		chromatic = 1
	}
	gl.Uniform1i(g.loc["uChromatic"], chromatic)
	if n > 0 {
		flat := u.Flatten()
		gl.Uniform3fv(g.loc["uC"], int32(n), &flat[0])
	}
	gl.Uniform2f(g.loc["uRes"], float32(w), float32(h))
	gl.Uniform2f(g.loc["uPan"], float32(u.View.Pan.X), float32(u.View.Pan.Y))
	gl.Uniform1f(g.loc["uScale"], float32(u.View.Scale()))
	gl.Uniform1f(g.loc["uVScale"], float32(u.VScale))
	gl.Uniform1f(g.loc["uMinR"], physics.MinRadius)

	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(g.scratch))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	gl.Enable(gl.BLEND)

	// GL rows run bottom-up.
	rowBytes := 4 * w
	for y := 0; y < h; y++ {
		src := g.scratch[(h-1-y)*rowBytes : (h-y)*rowBytes]
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], src)
	}
	return nil
}

func (g *GLEvaluator) releaseTarget() {
	if g.fbo != 0 {
		gl.DeleteFramebuffers(1, &g.fbo)
		g.fbo = 0
	}
	if g.tex != 0 {
		gl.DeleteTextures(1, &g.tex)
		g.tex = 0
	}
}

func (g *GLEvaluator) Cleanup() {
	if !g.initialized {
		return
	}
	g.releaseTarget()
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteProgram(g.program)
	g.initialized = false
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", core.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func buildProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", core.ErrShaderLink, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}
