package layout

import (
	"fmt"
	"html/template"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/fredbi/launchdash/internal/pkg/chart"
)

// node is the view of a [Component] passed to the page template.
type node struct {
	Component

	CSS      template.CSS
	Snippet  template.HTML
	Low      float64
	High     float64
	Children []node
}

type pageData struct {
	Title    string
	Assets   []string
	Root     node
	Endpoint string
	Graphs   map[string]string
}

var pageTemplate = template.Must(template.New("page").Parse(pageTpl))

// Render writes the dashboard page as HTML.
//
// Graph components host the initial charts, keyed by graph ID. The page script posts every
// input change to the update endpoint and applies the returned chart options.
func (l *Layout) Render(w io.Writer, initial map[string]*chart.Chart, endpoint string) error {
	data := pageData{
		Title:    l.Title,
		Endpoint: endpoint,
		Graphs:   make(map[string]string),
	}

	for _, graph := range l.Graphs() {
		data.Graphs[graph.ID] = graph.ChartElementID()
	}

	for _, id := range sortedKeys(initial) {
		r := initial[id].Build()
		r.Validate()

		for _, asset := range r.GetAssets().JSAssets.Values {
			if !slices.Contains(data.Assets, asset) {
				data.Assets = append(data.Assets, asset)
			}
		}
	}

	data.Root = l.view(l.Root, initial)

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering layout: %w", err)
	}

	return nil
}

func (l *Layout) view(c Component, initial map[string]*chart.Chart) node {
	n := node{
		Component: c,
		CSS:       styleCSS(c.Style),
	}

	if c.Kind == KindGraph {
		if initialChart, ok := initial[c.ID]; ok {
			snippet := initialChart.Snippet()
			n.Snippet = template.HTML(snippet.Element + snippet.Script) //nolint:gosec // produced by go-echarts templates
		}
	}

	if c.Kind == KindRangeSlider {
		n.Low, n.High = c.Min, c.Max
		if value, ok := c.Value.([]float64); ok && len(value) == 2 { //nolint:mnd // dual handle
			n.Low, n.High = value[0], value[1]
		}
	}

	for _, child := range c.Children {
		n.Children = append(n.Children, l.view(child, initial))
	}

	return n
}

func styleCSS(style map[string]string) template.CSS {
	if len(style) == 0 {
		return ""
	}

	properties := make([]string, 0, len(style))
	for _, key := range sortedKeys(style) {
		properties = append(properties, key+":"+style[key])
	}

	return template.CSS(strings.Join(properties, ";")) //nolint:gosec // static styles declared by the layout
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

const pageTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{ .Title }}</title>
{{- range .Assets }}
    <script src="{{ . }}"></script>
{{- end }}
    <style>
        body { font-family: sans-serif; margin: 1em 2em; }
        .range-slider { display: flex; align-items: center; gap: 1em; }
        .range-slider input[type=range] { flex: 1; }
    </style>
</head>
<body>
{{ template "component" .Root }}
<script type="text/javascript">
    "use strict";
    (function () {
        const endpoint = {{ .Endpoint }};
        const graphs = {{ .Graphs }};

        function readInputs() {
            const values = {};
            document.querySelectorAll("[data-input]").forEach(function (el) {
                if (el.dataset.input === "range-slider") {
                    let low = Number(el.querySelector("input.low").value);
                    let high = Number(el.querySelector("input.high").value);
                    if (low > high) {
                        const swap = low;
                        low = high;
                        high = swap;
                    }
                    el.querySelector(".range-value").textContent = low + " - " + high;
                    values[el.id] = [low, high];
                    return;
                }
                values[el.id] = el.value;
            });
            return values;
        }

        function update(changed) {
            fetch(endpoint, {
                method: "POST",
                headers: { "Content-Type": "application/json" },
                body: JSON.stringify({ changed: [changed], inputs: readInputs() })
            }).then(function (response) {
                if (!response.ok) {
                    throw new Error(response.status + " " + response.statusText);
                }
                return response.json();
            }).then(function (body) {
                Object.keys(body.outputs || {}).forEach(function (id) {
                    const el = document.getElementById(graphs[id]);
                    const instance = el && echarts.getInstanceByDom(el);
                    if (instance) {
                        instance.setOption(body.outputs[id], true);
                    }
                });
            }).catch(function (err) {
                console.error("dashboard update failed:", err);
            });
        }

        document.querySelectorAll("[data-input]").forEach(function (el) {
            el.addEventListener("change", function () { update(el.id); });
        });
    })();
</script>
</body>
</html>
{{ define "component" -}}
{{- if eq .Kind "div" -}}
<div>
{{- range .Children }}
{{ template "component" . }}
{{- end }}
</div>
{{- else if eq .Kind "h1" -}}
<h1 style="{{ .CSS }}">{{ .Text }}</h1>
{{- else if eq .Kind "p" -}}
<p>{{ .Text }}</p>
{{- else if eq .Kind "br" -}}
<br>
{{- else if eq .Kind "dropdown" -}}
{{- $value := .Value -}}
<select id="{{ .ID }}" data-input="dropdown" title="{{ .Placeholder }}">
    <option value="" disabled>{{ .Placeholder }}</option>
{{- range .Options }}
    <option value="{{ .Value }}"{{ if eq .Value $value }} selected{{ end }}>{{ .Label }}</option>
{{- end }}
</select>
{{- else if eq .Kind "range-slider" -}}
<div id="{{ .ID }}" class="range-slider" data-input="range-slider">
    <input class="low" type="range" min="{{ .Min }}" max="{{ .Max }}" step="any" value="{{ .Low }}" list="{{ .ID }}-marks">
    <input class="high" type="range" min="{{ .Min }}" max="{{ .Max }}" step="any" value="{{ .High }}" list="{{ .ID }}-marks">
    <span class="range-value">{{ .Low }} - {{ .High }}</span>
    <datalist id="{{ .ID }}-marks">
{{- range .Marks }}
        <option value="{{ .Value }}" label="{{ .Label }}"></option>
{{- end }}
    </datalist>
</div>
{{- else if eq .Kind "graph" -}}
<div id="{{ .ID }}" class="graph">
{{ .Snippet }}
</div>
{{- end -}}
{{- end }}
`
