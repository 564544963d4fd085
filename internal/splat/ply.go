// Package splat reads Gaussian-splat captures stored as PLY files and reduces them to a
// coloured point cloud for the interior view.
package splat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/scene"
)

// ErrFormat is the cause of every parse failure.
var ErrFormat = errors.New("splat: invalid ply")

// shC0 is the zeroth-order spherical-harmonics basis constant used to turn f_dc into RGB.
const shC0 = 0.28209479177387814

// Point is one splat reduced to a coloured point.
type Point struct {
	Position mgl32.Vec3
	Color    color.RGBA // alpha carries the splat opacity
	Size     float32    // mean world-space radius; 0 when the file has no scales
}

// Cloud is a decoded capture.
type Cloud struct {
	Points []Point
	Bounds scene.Box
}

type encoding int

const (
	ascii encoding = iota
	binaryLE
	binaryBE
)

type property struct {
	name string
	kind string
	list bool
}

type element struct {
	name  string
	count int
	props []property
}

type header struct {
	format   encoding
	elements []element
}

// Decode parses PLY bytes.
func Decode(data []byte) (*Cloud, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a PLY stream. Only the "vertex" element is used; elements before it must
// have fixed-size rows when the body is binary.
func Read(r io.Reader) (*Cloud, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	for _, el := range h.elements {
		if el.name == "vertex" {
			return readVertices(br, h.format, el)
		}
		if err := skipElement(br, h.format, el); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no vertex element", ErrFormat)
}

func readHeader(br *bufio.Reader) (header, error) {
	var h header
	line, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return h, fmt.Errorf("%w: missing magic", ErrFormat)
	}
	sawFormat := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return h, fmt.Errorf("%w: header: %v", ErrFormat, err)
		}
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "format":
			if len(f) < 2 {
				return h, fmt.Errorf("%w: bad format line", ErrFormat)
			}
			switch f[1] {
			case "ascii":
				h.format = ascii
			case "binary_little_endian":
				h.format = binaryLE
			case "binary_big_endian":
				h.format = binaryBE
			default:
				return h, fmt.Errorf("%w: format %q", ErrFormat, f[1])
			}
			sawFormat = true
		case "element":
			if len(f) != 3 {
				return h, fmt.Errorf("%w: bad element line", ErrFormat)
			}
			n, err := strconv.Atoi(f[2])
			if err != nil || n < 0 {
				return h, fmt.Errorf("%w: element count %q", ErrFormat, f[2])
			}
			h.elements = append(h.elements, element{name: f[1], count: n})
		case "property":
			if len(h.elements) == 0 {
				return h, fmt.Errorf("%w: property before element", ErrFormat)
			}
			el := &h.elements[len(h.elements)-1]
			switch {
			case len(f) == 5 && f[1] == "list":
				el.props = append(el.props, property{name: f[4], kind: f[3], list: true})
			case len(f) == 3:
				if sizeOf(f[1]) == 0 {
					return h, fmt.Errorf("%w: property type %q", ErrFormat, f[1])
				}
				el.props = append(el.props, property{name: f[2], kind: f[1]})
			default:
				return h, fmt.Errorf("%w: bad property line", ErrFormat)
			}
		case "end_header":
			if !sawFormat {
				return h, fmt.Errorf("%w: no format", ErrFormat)
			}
			return h, nil
		}
	}
}

func sizeOf(kind string) int {
	switch kind {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func skipElement(br *bufio.Reader, format encoding, el element) error {
	if format == ascii {
		for i := 0; i < el.count; i++ {
			if _, err := br.ReadString('\n'); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrFormat, el.name, err)
			}
		}
		return nil
	}
	row := 0
	for _, p := range el.props {
		if p.list {
			return fmt.Errorf("%w: cannot skip list element %q", ErrFormat, el.name)
		}
		row += sizeOf(p.kind)
	}
	if _, err := br.Discard(row * el.count); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFormat, el.name, err)
	}
	return nil
}

// columns locates the properties a point needs; -1 marks an absent one.
type columns struct {
	x, y, z   int
	dc        [3]int
	rgb       [3]int
	opacity   int
	scale     [3]int
	rgbIsByte bool
}

func locate(props []property) columns {
	c := columns{x: -1, y: -1, z: -1, opacity: -1, dc: [3]int{-1, -1, -1}, rgb: [3]int{-1, -1, -1}, scale: [3]int{-1, -1, -1}}
	for i, p := range props {
		switch p.name {
		case "x":
			c.x = i
		case "y":
			c.y = i
		case "z":
			c.z = i
		case "f_dc_0", "f_dc_1", "f_dc_2":
			c.dc[p.name[5]-'0'] = i
		case "red":
			c.rgb[0] = i
			c.rgbIsByte = sizeOf(p.kind) == 1
		case "green":
			c.rgb[1] = i
		case "blue":
			c.rgb[2] = i
		case "opacity":
			c.opacity = i
		case "scale_0", "scale_1", "scale_2":
			c.scale[p.name[6]-'0'] = i
		}
	}
	return c
}

func readVertices(br *bufio.Reader, format encoding, el element) (*Cloud, error) {
	for _, p := range el.props {
		if p.list {
			return nil, fmt.Errorf("%w: list property %q in vertex", ErrFormat, p.name)
		}
	}
	cols := locate(el.props)
	if cols.x < 0 || cols.y < 0 || cols.z < 0 {
		return nil, fmt.Errorf("%w: vertex without x/y/z", ErrFormat)
	}

	cloud := &Cloud{Points: make([]Point, 0, el.count), Bounds: scene.EmptyBox()}
	row := make([]float64, len(el.props))
	var order binary.ByteOrder = binary.LittleEndian
	if format == binaryBE {
		order = binary.BigEndian
	}
	buf := make([]byte, 8)

	for i := 0; i < el.count; i++ {
		if format == ascii {
			line, err := br.ReadString('\n')
			if err != nil && line == "" {
				return nil, fmt.Errorf("%w: vertex %d: %v", ErrFormat, i, err)
			}
			f := strings.Fields(line)
			if len(f) < len(row) {
				return nil, fmt.Errorf("%w: vertex %d has %d values", ErrFormat, i, len(f))
			}
			for j := range row {
				v, err := strconv.ParseFloat(f[j], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: vertex %d: %v", ErrFormat, i, err)
				}
				row[j] = v
			}
		} else {
			for j, p := range el.props {
				n := sizeOf(p.kind)
				if _, err := io.ReadFull(br, buf[:n]); err != nil {
					return nil, fmt.Errorf("%w: vertex %d: %v", ErrFormat, i, err)
				}
				row[j] = decodeScalar(p.kind, buf[:n], order)
			}
		}
		pt := toPoint(row, cols)
		cloud.Points = append(cloud.Points, pt)
		cloud.Bounds = cloud.Bounds.Expand(pt.Position)
	}
	return cloud, nil
}

func decodeScalar(kind string, b []byte, order binary.ByteOrder) float64 {
	switch kind {
	case "char", "int8":
		return float64(int8(b[0]))
	case "uchar", "uint8":
		return float64(b[0])
	case "short", "int16":
		return float64(int16(order.Uint16(b)))
	case "ushort", "uint16":
		return float64(order.Uint16(b))
	case "int", "int32":
		return float64(int32(order.Uint32(b)))
	case "uint", "uint32":
		return float64(order.Uint32(b))
	case "float", "float32":
		return float64(math.Float32frombits(order.Uint32(b)))
	case "double", "float64":
		return math.Float64frombits(order.Uint64(b))
	}
	return 0
}

func toPoint(row []float64, c columns) Point {
	p := Point{
		Position: mgl32.Vec3{float32(row[c.x]), float32(row[c.y]), float32(row[c.z])},
		Color:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	switch {
	case c.dc[0] >= 0 && c.dc[1] >= 0 && c.dc[2] >= 0:
		p.Color.R = unit8(0.5 + shC0*row[c.dc[0]])
		p.Color.G = unit8(0.5 + shC0*row[c.dc[1]])
		p.Color.B = unit8(0.5 + shC0*row[c.dc[2]])
	case c.rgb[0] >= 0 && c.rgb[1] >= 0 && c.rgb[2] >= 0:
		scale := 1.0
		if !c.rgbIsByte {
			scale = 255
		}
		p.Color.R = clampByte(row[c.rgb[0]] * scale)
		p.Color.G = clampByte(row[c.rgb[1]] * scale)
		p.Color.B = clampByte(row[c.rgb[2]] * scale)
	}
	if c.opacity >= 0 {
		p.Color.A = unit8(1 / (1 + math.Exp(-row[c.opacity])))
	}
	if c.scale[0] >= 0 && c.scale[1] >= 0 && c.scale[2] >= 0 {
		s := (math.Exp(row[c.scale[0]]) + math.Exp(row[c.scale[1]]) + math.Exp(row[c.scale[2]])) / 3
		p.Size = float32(s)
	}
	return p
}

func unit8(v float64) uint8 {
	return clampByte(v * 255)
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// RotateX rotates every point by angle radians about the X axis and recomputes the bounds.
// Captures are stored upside down; the interior applies a half turn once loaded.
func (c *Cloud) RotateX(angle float32) {
	s, co := math32.Sin(angle), math32.Cos(angle)
	c.Bounds = scene.EmptyBox()
	for i := range c.Points {
		p := c.Points[i].Position
		c.Points[i].Position = mgl32.Vec3{p[0], p[1]*co - p[2]*s, p[1]*s + p[2]*co}
		c.Bounds = c.Bounds.Expand(c.Points[i].Position)
	}
}

// Subsample returns a cloud with at most max points taken at an even stride. The receiver
// is returned unchanged when it is already small enough or max is not positive.
func (c *Cloud) Subsample(max int) *Cloud {
	if max <= 0 || len(c.Points) <= max {
		return c
	}
	out := &Cloud{Points: make([]Point, 0, max), Bounds: scene.EmptyBox()}
	step := float64(len(c.Points)) / float64(max)
	for i := 0; i < max; i++ {
		p := c.Points[int(float64(i)*step)]
		out.Points = append(out.Points, p)
		out.Bounds = out.Bounds.Expand(p.Position)
	}
	return out
}
