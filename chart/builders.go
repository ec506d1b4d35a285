package chart

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func title(text string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: text})
}

func shadowTooltip() charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{
		Show:        true,
		Trigger:     "axis",
		AxisPointer: &opts.AxisPointer{Type: "shadow"},
	})
}

func itemTooltip() charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"})
}

func rotatedLabels() charts.GlobalOpts {
	return charts.WithXAxisOpts(opts.XAxis{
		Type:      "category",
		AxisLabel: &opts.AxisLabel{Show: true, Rotate: 45},
	})
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Bar is a vertical bar chart over category labels.
func Bar(text string, labels []string, values []float64, yName, color string) Options {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		title(text),
		shadowTooltip(),
		rotatedLabels(),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName}),
	)
	bar.SetXAxis(labels).
		AddSeries(yName, barData(values), charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	return decode(bar)
}

// CountBar is Bar over integer values.
func CountBar(text string, labels []string, values []int, yName, color string) Options {
	return Bar(text, labels, toFloats(values), yName, color)
}

// HorizontalBar puts the labels on the y axis.
func HorizontalBar(text string, labels []string, values []int, xName, yName, color string) Options {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		title(text),
		shadowTooltip(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: yName, Data: labels}),
	)
	bar.AddSeries(xName, barData(toFloats(values)), charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	return decode(bar)
}

// Line is a smoothed area line over category labels.
func Line(text string, labels []string, values []int, yName string) Options {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		title(text),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		rotatedLabels(),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName}),
	)
	line.SetXAxis(labels).AddSeries(yName, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: true}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: Cyan}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.3}),
	)
	o := decode(line)
	o["grid"] = map[string]any{"containLabel": true}
	return o
}

// Pie is a pie chart with a vertical legend.
func Pie(text string, slices []NamedValue) Options {
	data := make([]opts.PieData, len(slices))
	for i, s := range slices {
		data[i] = opts.PieData{Name: s.Name, Value: s.Value}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		title(text),
		itemTooltip(),
		charts.WithLegendOpts(opts.Legend{Show: true, Orient: "vertical", Left: "left"}),
	)
	pie.AddSeries("", data, charts.WithPieChartOpts(opts.PieChart{Radius: "50%"}))
	o := decode(pie)
	o.extend(0, map[string]any{
		"emphasis": map[string]any{"itemStyle": map[string]any{
			"shadowBlur":  10,
			"shadowColor": "rgba(0, 0, 0, 0.5)",
		}},
	})
	return o
}

// Gauge is a half-circle percentage gauge with red, blue and cyan bands.
func Gauge(text string, value float64, name string) Options {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: text, Left: "center"}))
	gauge.AddSeries(name, []opts.GaugeData{{Name: name, Value: value}})

	// go-echarts types gauge data only; the dial layout is set directly.
	o := decode(gauge)
	o.extend(0, map[string]any{
		"startAngle":  180,
		"endAngle":    0,
		"min":         0,
		"max":         100,
		"splitNumber": 10,
		"axisLine": map[string]any{"lineStyle": map[string]any{
			"width": 30,
			"color": []any{[]any{0.3, "#fd666d"}, []any{0.7, "#37a2da"}, []any{1, "#67e0e3"}},
		}},
		"pointer":   map[string]any{"itemStyle": map[string]any{"color": "auto"}},
		"axisTick":  map[string]any{"distance": -30, "length": 8},
		"splitLine": map[string]any{"distance": -30, "length": 30},
		"axisLabel": map[string]any{"distance": -20, "fontSize": 12},
		"detail": map[string]any{
			"valueAnimation": true,
			"formatter":      "{value}%",
			"fontSize":       30,
			"offsetCenter":   []any{0, "70%"},
		},
	})
	return o
}

// DumbbellRow is one category compared across two groups.
type DumbbellRow struct {
	Label string
	A     int
	B     int
}

// Dumbbell draws a grey connector per row and one scatter series per group.
func Dumbbell(text, nameA, nameB string, rows []DumbbellRow, xName, yName string) Options {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		title(text),
		itemTooltip(),
		charts.WithLegendOpts(opts.Legend{Show: true, Data: []string{nameA, nameB}}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: yName, Data: labels}),
	)
	for _, r := range rows {
		line.AddSeries("", []opts.LineData{
			{Value: []any{r.A, r.Label}, Symbol: "none"},
			{Value: []any{r.B, r.Label}, Symbol: "none"},
		}, charts.WithLineStyleOpts(opts.LineStyle{Color: "gray", Width: 2}))
	}

	points := charts.NewScatter()
	for _, side := range []struct {
		name  string
		color string
		value func(DumbbellRow) int
	}{
		{nameA, Blue, func(r DumbbellRow) int { return r.A }},
		{nameB, Green, func(r DumbbellRow) int { return r.B }},
	} {
		data := make([]opts.ScatterData, len(rows))
		for i, r := range rows {
			data[i] = opts.ScatterData{Value: []any{side.value(r), r.Label}, SymbolSize: 12}
		}
		points.AddSeries(side.name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: side.color}))
	}
	line.Overlap(points)
	return decode(line)
}

// Bubble is one point of a ratio bubble chart.
type Bubble struct {
	Label      string
	Ratio      float64
	Agreements int
	Products   int
}

const bubbleTooltip = `function(params) {
    return 'Manufacturer: ' + params.data[3] + '<br/>' +
           'Ratio: ' + params.data[0].toFixed(2) + '<br/>' +
           'Agreements: ' + params.data[4] + '<br/>' +
           'Products: ' + params.data[5];
}`

const bubbleSize = `function(data) {
    return Math.sqrt(data[4]) * 2;
}`

// RatioBubbles plots ratio on x against label rows on y, sized by agreement
// count and coloured through a visual map spanning [lo, hi].
func RatioBubbles(text string, points []Bubble, lo, hi float64, xName, yName string) Options {
	labels := make([]string, len(points))
	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		labels[i] = p.Label
		data[i] = opts.ScatterData{Value: []any{p.Ratio, i, p.Agreements, p.Label, p.Agreements, p.Products}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		title(text),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item", Formatter: opts.FuncOpts(bubbleTooltip)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: yName, Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(lo),
			Max:        float32(hi),
			Text:       []string{"HIGH", "LOW"},
		}),
	)
	scatter.AddSeries("", data)

	o := decode(scatter)
	if vm, ok := o["visualMap"].([]any); ok && len(vm) > 0 {
		if m, ok := vm[0].(map[string]any); ok {
			m["dimension"] = 0
			m["orient"] = "vertical"
			m["right"] = 10
			m["top"] = "center"
			m["inRange"] = map[string]any{"color": []any{"#50a3ba", "#eac736", "#d94e5d"}}
		}
	}
	o.extend(0, map[string]any{
		"symbolSize": opts.FuncOpts(bubbleSize),
		"emphasis":   map[string]any{"focus": "self"},
	})
	return o
}

// Sankey is a flow diagram with gradient adjacency highlighting.
func Sankey(text, subtitle string, nodes []string, links []Link) Options {
	data := make([]opts.SankeyNode, len(nodes))
	for i, n := range nodes {
		data[i] = opts.SankeyNode{Name: n}
	}
	edges := make([]opts.SankeyLink, len(links))
	for i, l := range links {
		edges[i] = opts.SankeyLink{Source: l.Source, Target: l.Target, Value: float32(l.Value)}
	}

	sankey := charts.NewSankey()
	sankey.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: text, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item", TriggerOn: "mousemove"}),
	)
	sankey.AddSeries("", data, edges, charts.WithLineStyleOpts(opts.LineStyle{Color: "gradient", Curveness: 0.5}))

	o := decode(sankey)
	o.extend(0, map[string]any{"emphasis": map[string]any{"focus": "adjacency"}})
	return o
}
