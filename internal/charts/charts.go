// Package charts assembles Plotly-compatible chart payloads for the insight
// agent. This is pure data assembly; rendering happens in the frontend.
package charts

// Marker styles a trace's points or bars.
type Marker struct {
	Color  string                 `json:"color,omitempty"`
	Colors []string               `json:"colors,omitempty"`
	Size   int                    `json:"size,omitempty"`
	Line   map[string]interface{} `json:"line,omitempty"`
}

// Trace is one Plotly data trace.
type Trace struct {
	Type          string                 `json:"type"`
	X             []string               `json:"x,omitempty"`
	Y             []float64              `json:"y,omitempty"`
	Values        []float64              `json:"values,omitempty"`
	Labels        []string               `json:"labels,omitempty"`
	Name          string                 `json:"name,omitempty"`
	Mode          string                 `json:"mode,omitempty"`
	Fill          string                 `json:"fill,omitempty"`
	FillColor     string                 `json:"fillcolor,omitempty"`
	Line          map[string]interface{} `json:"line,omitempty"`
	Marker        *Marker                `json:"marker,omitempty"`
	HoverTemplate string                 `json:"hovertemplate,omitempty"`
}

// Axis configures one chart axis.
type Axis struct {
	Title     string `json:"title,omitempty"`
	GridColor string `json:"gridcolor,omitempty"`
	ShowGrid  *bool  `json:"showgrid,omitempty"`
}

// Margin sets the chart margins in pixels.
type Margin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

// Layout is the Plotly layout block.
type Layout struct {
	Title        string  `json:"title,omitempty"`
	XAxis        *Axis   `json:"xaxis,omitempty"`
	YAxis        *Axis   `json:"yaxis,omitempty"`
	Margin       *Margin `json:"margin,omitempty"`
	PlotBGColor  string  `json:"plot_bgcolor,omitempty"`
	PaperBGColor string  `json:"paper_bgcolor,omitempty"`
	ShowLegend   *bool   `json:"showlegend,omitempty"`
}

// Chart is a complete Plotly figure, ready for react-plotly.js.
type Chart struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// palette is the service color scheme, strongest first.
var palette = []string{
	"#4F46E5", "#7C3AED", "#EC4899", "#F59E0B",
	"#10B981", "#EF4444", "#6366F1", "#8B5CF6",
}

func defaultMargin() *Margin {
	return &Margin{T: 40, L: 50, R: 20, B: 50}
}

// NewBarChart builds a styled bar chart.
func NewBarChart(title string, x []string, y []float64, xTitle, yTitle string) Chart {
	return Chart{
		Data: []Trace{{
			Type:          "bar",
			X:             x,
			Y:             y,
			Marker:        &Marker{Color: palette[0], Line: map[string]interface{}{"color": "#FFFFFF", "width": 1}},
			HoverTemplate: "<b>%{x}</b><br>Amount: $%{y:,.2f}<extra></extra>",
		}},
		Layout: Layout{
			Title:        title,
			XAxis:        &Axis{Title: xTitle},
			YAxis:        &Axis{Title: yTitle},
			Margin:       defaultMargin(),
			PlotBGColor:  "#FAFAFA",
			PaperBGColor: "#FFFFFF",
		},
	}
}

// NewLineChart builds a styled line chart with markers.
func NewLineChart(title string, x []string, y []float64, xTitle, yTitle string) Chart {
	return Chart{
		Data: []Trace{{
			Type:          "line",
			X:             x,
			Y:             y,
			Mode:          "lines+markers",
			Line:          map[string]interface{}{"color": palette[0], "width": 3},
			Marker:        &Marker{Color: palette[0], Size: 8},
			HoverTemplate: "<b>%{x}</b><br>Amount: $%{y:,.2f}<extra></extra>",
		}},
		Layout: Layout{
			Title:        title,
			XAxis:        &Axis{Title: xTitle},
			YAxis:        &Axis{Title: yTitle},
			Margin:       defaultMargin(),
			PlotBGColor:  "#FAFAFA",
			PaperBGColor: "#FFFFFF",
		},
	}
}

// NewAreaChart builds a filled line chart for balance-style series.
func NewAreaChart(title string, x []string, y []float64, xTitle, yTitle string) Chart {
	c := NewLineChart(title, x, y, xTitle, yTitle)
	c.Data[0].Fill = "tozeroy"
	c.Data[0].FillColor = "rgba(79, 70, 229, 0.15)"
	return c
}

// NewPieChart builds a styled pie chart.
func NewPieChart(title string, labels []string, values []float64) Chart {
	colors := palette
	if len(labels) < len(colors) {
		colors = colors[:len(labels)]
	}
	showLegend := true
	return Chart{
		Data: []Trace{{
			Type:          "pie",
			Labels:        labels,
			Values:        values,
			Marker:        &Marker{Colors: colors, Line: map[string]interface{}{"color": "#FFFFFF", "width": 2}},
			HoverTemplate: "<b>%{label}</b><br>Amount: $%{value:,.2f}<br>Percentage: %{percent}<extra></extra>",
		}},
		Layout: Layout{
			Title:        title,
			Margin:       &Margin{T: 60, L: 20, R: 20, B: 20},
			PlotBGColor:  "#FAFAFA",
			PaperBGColor: "#FFFFFF",
			ShowLegend:   &showLegend,
		},
	}
}
