package charts

import (
	"bytes"
	"fmt"
	"html/template"
)

var svgTemplate = template.Must(template.New("figure").Funcs(template.FuncMap{
	"n": num,
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" font-family="Arial, Helvetica, sans-serif">
<rect x="0" y="0" width="{{.Width}}" height="{{.Height}}" fill="{{.Background}}"/>
{{- range .Lines}}
<line x1="{{n .X1}}" y1="{{n .Y1}}" x2="{{n .X2}}" y2="{{n .Y2}}" stroke="{{.Stroke}}" stroke-width="1"/>
{{- end}}
{{- range .Rects}}
<rect x="{{n .X}}" y="{{n .Y}}" width="{{n .W}}" height="{{n .H}}" fill="{{.Fill}}"/>
{{- end}}
{{- range .Circles}}
<circle cx="{{n .CX}}" cy="{{n .CY}}" r="{{n .R}}" fill="{{.Fill}}"/>
{{- end}}
{{- range .Paths}}
<path d="{{.D}}" fill="{{.Fill}}" stroke="#ffffff" stroke-width="1"/>
{{- end}}
{{- range .Texts}}
<text x="{{n .X}}" y="{{n .Y}}"{{if .Anchor}} text-anchor="{{.Anchor}}"{{end}} font-size="{{.Size}}" fill="{{.Fill}}"{{if .Bold}} font-weight="bold"{{end}}{{if .Rotate}} transform="rotate(-90 {{n .X}} {{n .Y}})"{{end}}>{{.Content}}</text>
{{- end}}
</svg>
`))

// SVG renders a figure as a standalone SVG document.
func SVG(fig Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, layout(fig)); err != nil {
		return nil, fmt.Errorf("render %s: %w", fig.Name, err)
	}
	return buf.Bytes(), nil
}
