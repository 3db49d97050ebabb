package charts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// canvas is the flattened drawing of a figure that the SVG template walks.
type canvas struct {
	Width      int
	Height     int
	Background string
	Foreground string
	Rects      []rect
	Lines      []line
	Paths      []path
	Circles    []circle
	Texts      []text
}

type rect struct {
	X, Y, W, H float64
	Fill       string
}

type line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
}

type path struct {
	D    string
	Fill string
}

type circle struct {
	CX, CY, R float64
	Fill      string
}

type text struct {
	X, Y    float64
	Anchor  string
	Size    int
	Fill    string
	Bold    bool
	Rotate  bool
	Content string
}

const (
	marginLeft   = 90.0
	marginRight  = 170.0
	marginTop    = 70.0
	marginBottom = 90.0
	gridColor    = "#e5e5e5"
	axisColor    = "#444444"
)

func layout(fig Figure) canvas {
	w, h := fig.size()
	c := canvas{Width: w, Height: h, Background: "#ffffff", Foreground: "#222222"}

	switch {
	case fig.Empty():
		c.title(fig.Title)
		c.Texts = append(c.Texts, text{X: float64(w) / 2, Y: float64(h) / 2, Anchor: "middle", Size: 16, Fill: "#888888", Content: "Sin datos"})
	case fig.Kind == KindMix:
		c.Background, c.Foreground = "#0f0f0f", "#ffffff"
		c.title(fig.Title)
		layoutMix(&c, fig)
	case fig.Kind == KindPie:
		c.Background = "#808080"
		c.title(fig.Title)
		r := math.Min(float64(w), float64(h)-marginTop) * 0.3
		for i, p := range fig.Pies {
			cx := float64(w) * float64(2*i+1) / float64(2*len(fig.Pies))
			layoutPie(&c, p, cx, marginTop+(float64(h)-marginTop)/2, r)
		}
	default:
		c.title(fig.Title)
		layoutBars(&c, fig)
	}
	return c
}

func (c *canvas) title(s string) {
	c.Texts = append(c.Texts, text{X: float64(c.Width) / 2, Y: 36, Anchor: "middle", Size: 20, Fill: c.Foreground, Bold: true, Content: s})
}

func layoutBars(c *canvas, fig Figure) {
	plotW := float64(c.Width) - marginLeft - marginRight
	plotH := float64(c.Height) - marginTop - marginBottom

	lo, hi := 0.0, 0.0
	for _, s := range fig.Series {
		for _, p := range s.Points {
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	step := niceStep((hi - lo) / 5)
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	y := func(v float64) float64 {
		return marginTop + plotH*(hi-v)/(hi-lo)
	}

	for v := lo; v <= hi+step/2; v += step {
		c.Lines = append(c.Lines, line{X1: marginLeft, Y1: y(v), X2: marginLeft + plotW, Y2: y(v), Stroke: gridColor})
		c.Texts = append(c.Texts, text{X: marginLeft - 8, Y: y(v) + 4, Anchor: "end", Size: 12, Fill: c.Foreground, Content: formatValue(v)})
	}
	c.Lines = append(c.Lines,
		line{X1: marginLeft, Y1: y(0), X2: marginLeft + plotW, Y2: y(0), Stroke: axisColor},
		line{X1: marginLeft, Y1: marginTop, X2: marginLeft, Y2: marginTop + plotH, Stroke: axisColor},
	)

	n := len(fig.Categories)
	if n == 0 {
		return
	}
	groupW := plotW / float64(n)
	legend := false
	for i, cat := range fig.Categories {
		type bar struct {
			color string
			value float64
		}
		var bars []bar
		for _, s := range fig.Series {
			for _, p := range s.Points {
				if p.Category == cat {
					bars = append(bars, bar{s.Color, p.Value})
				}
			}
		}
		if len(bars) > 1 {
			legend = true
		}

		left := marginLeft + groupW*float64(i)
		c.Texts = append(c.Texts, text{X: left + groupW/2, Y: marginTop + plotH + 22, Anchor: "middle", Size: 13, Fill: c.Foreground, Content: cat})
		if len(bars) == 0 {
			continue
		}

		barW := math.Min(groupW*0.8/float64(len(bars)), 120)
		start := left + (groupW-barW*float64(len(bars)))/2
		for j, b := range bars {
			x := start + barW*float64(j)
			top, bottom := y(math.Max(b.value, 0)), y(math.Min(b.value, 0))
			c.Rects = append(c.Rects, rect{X: x + 2, Y: top, W: barW - 4, H: bottom - top, Fill: b.color})
			labelY := top - 6
			if b.value < 0 {
				labelY = bottom + 16
			}
			c.Texts = append(c.Texts, text{X: x + barW/2, Y: labelY, Anchor: "middle", Size: 12, Fill: c.Foreground, Content: formatValue(b.value)})
		}
	}

	c.Texts = append(c.Texts,
		text{X: marginLeft + plotW/2, Y: float64(c.Height) - 24, Anchor: "middle", Size: 14, Fill: c.Foreground, Content: fig.XTitle},
		text{X: 24, Y: marginTop + plotH/2, Anchor: "middle", Size: 14, Fill: c.Foreground, Rotate: true, Content: fig.YTitle},
	)

	if legend {
		lx := marginLeft + plotW + 24
		c.Texts = append(c.Texts, text{X: lx, Y: marginTop, Size: 13, Fill: c.Foreground, Bold: true, Content: "Año"})
		for i, s := range fig.Series {
			ly := marginTop + 22 + float64(i)*22
			c.Rects = append(c.Rects, rect{X: lx, Y: ly - 11, W: 14, H: 14, Fill: s.Color})
			c.Texts = append(c.Texts, text{X: lx + 20, Y: ly + 1, Size: 13, Fill: c.Foreground, Content: s.Name})
		}
	}
}

func layoutPie(c *canvas, p Pie, cx, cy, r float64) {
	c.Texts = append(c.Texts, text{X: cx, Y: cy - r - 40, Anchor: "middle", Size: 16, Fill: c.Foreground, Bold: true, Content: p.Title})

	total := 0.0
	for _, s := range p.Slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total <= 0 {
		c.Texts = append(c.Texts, text{X: cx, Y: cy, Anchor: "middle", Size: 14, Fill: c.Foreground, Content: "Sin datos"})
		return
	}

	angle := -math.Pi / 2
	color := 0
	for _, s := range p.Slices {
		if s.Value <= 0 {
			continue
		}
		frac := s.Value / total
		fill := palette[color%len(palette)]
		color++

		sweep := frac * 2 * math.Pi
		if frac >= 0.9999 {
			c.Circles = append(c.Circles, circle{CX: cx, CY: cy, R: r, Fill: fill})
		} else {
			c.Paths = append(c.Paths, path{D: arcPath(cx, cy, r, angle, angle+sweep), Fill: fill})
		}

		mid := angle + sweep/2
		lx, ly := cx+math.Cos(mid)*r*1.18, cy+math.Sin(mid)*r*1.18
		anchor := "start"
		if math.Cos(mid) < 0 {
			anchor = "end"
		}
		c.Texts = append(c.Texts,
			text{X: lx, Y: ly, Anchor: anchor, Size: 11, Fill: c.Foreground, Content: s.Label},
			text{X: lx, Y: ly + 14, Anchor: anchor, Size: 11, Fill: c.Foreground,
				Content: fmt.Sprintf("%s (%s%%)", formatValue(s.Value), strconv.FormatFloat(frac*100, 'f', 1, 64))},
		)
		angle += sweep
	}

	c.Circles = append(c.Circles, circle{CX: cx, CY: cy, R: r * 0.3, Fill: c.Background})
}

func layoutMix(c *canvas, fig Figure) {
	w, h := float64(c.Width), float64(c.Height)
	r := math.Min(w*0.38, h-marginTop) * 0.3
	cy := marginTop + (h-marginTop)/2

	if len(fig.Pies) > 0 {
		layoutPie(c, fig.Pies[0], w*0.19, cy, r)
	}
	if len(fig.Pies) > 1 {
		layoutPie(c, fig.Pies[1], w*0.81, cy, r)
	}

	tableX := w * 0.38
	tableW := w * 0.24
	colX := []float64{tableX + 8, tableX + tableW*0.55, tableX + tableW*0.77, tableX + tableW - 8}
	anchors := []string{"start", "end", "end", "end"}
	rowH := 24.0
	top := cy - rowH*float64(len(fig.Gap)+1)/2

	c.Texts = append(c.Texts, text{X: tableX + tableW/2, Y: top - 14, Anchor: "middle", Size: 14, Fill: c.Foreground, Bold: true, Content: "GAP por Canal"})
	c.Rects = append(c.Rects, rect{X: tableX, Y: top, W: tableW, H: rowH, Fill: "#2b2b2b"})
	for i, hdr := range []string{"Canal", "Actual", "Anterior", "GAP"} {
		c.Texts = append(c.Texts, text{X: colX[i], Y: top + 16, Anchor: anchors[i], Size: 12, Fill: "#ffffff", Bold: true, Content: hdr})
	}
	for i, g := range fig.Gap {
		ry := top + rowH*float64(i+1)
		c.Rects = append(c.Rects, rect{X: tableX, Y: ry, W: tableW, H: rowH, Fill: "#1e1e1e"})
		c.Lines = append(c.Lines, line{X1: tableX, Y1: ry, X2: tableX + tableW, Y2: ry, Stroke: "#3a3a3a"})
		cells := []string{g.Channel, formatValue(g.Current), formatValue(g.Previous), g.Text()}
		for j, cell := range cells {
			fill := "#ffffff"
			if j == 3 {
				fill = g.Color()
			}
			c.Texts = append(c.Texts, text{X: colX[j], Y: ry + 16, Anchor: anchors[j], Size: 11, Fill: fill, Content: cell})
		}
	}
}

// arcPath draws a pie sector from angle a0 to a1, in radians.
func arcPath(cx, cy, r, a0, a1 float64) string {
	x0, y0 := cx+r*math.Cos(a0), cy+r*math.Sin(a0)
	x1, y1 := cx+r*math.Cos(a1), cy+r*math.Sin(a1)
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		num(cx), num(cy), num(x0), num(y0), num(r), num(r), large, num(x1), num(y1))
	return b.String()
}

// niceStep rounds a raw tick step up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
