/*
Package chart builds ECharts option objects.

PURPOSE:
  Pages return declarative chart configuration; any ECharts front-end can
  render it with setOption. Builders assemble charts with go-echarts and
  hand back the decoded option JSON, so a page can be encoded, inspected
  in tests and extended with fields go-echarts does not type.

CALLBACKS:
  ECharts accepts JavaScript functions for a few fields (tooltip formatter,
  symbol size). They travel as strings wrapped in the go-echarts function
  marker (opts.FuncOpts); the viewer in api/server.go revives them.

SEE ALSO:
  - builders.go: One constructor per chart kind
*/
package chart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Palette colours.
const (
	Blue   = "#5470c6"
	Green  = "#91cc75"
	Yellow = "#fac858"
	Red    = "#ee6666"
	Cyan   = "#73c0de"
)

// FuncMarker delimits JavaScript source inside a JSON string.
const FuncMarker = "__f__"

// IsFunc reports whether s is marker-wrapped JavaScript.
func IsFunc(s string) bool {
	return len(s) > 2*len(FuncMarker) && strings.HasPrefix(s, FuncMarker) && strings.HasSuffix(s, FuncMarker)
}

// Options is an ECharts option object as decoded JSON.
type Options map[string]any

// Series returns the i-th series, or nil.
func (o Options) Series(i int) map[string]any {
	list, _ := o["series"].([]any)
	if i < 0 || i >= len(list) {
		return nil
	}
	s, _ := list[i].(map[string]any)
	return s
}

// Axis returns the first "xAxis" or "yAxis" object, or nil.
func (o Options) Axis(key string) map[string]any {
	switch v := o[key].(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		m, _ := v[0].(map[string]any)
		return m
	case map[string]any:
		return v
	}
	return nil
}

// Labels returns the category labels of an axis.
func (o Options) Labels(key string) []string {
	axis := o.Axis(key)
	if axis == nil {
		return nil
	}
	data, _ := axis["data"].([]any)
	out := make([]string, 0, len(data))
	for _, d := range data {
		out = append(out, fmt.Sprint(d))
	}
	return out
}

// extend merges fields into the i-th series.
func (o Options) extend(i int, fields map[string]any) {
	s := o.Series(i)
	if s == nil {
		return
	}
	for k, v := range fields {
		s[k] = v
	}
}

// charter is the part of a go-echarts chart needed to emit its options.
type charter interface {
	Validate()
	JSON() map[string]interface{}
}

// decode finalises a go-echarts chart and returns its options as plain JSON
// values. Encoding only fails on unsupported Go values, which builders never
// produce.
func decode(c charter) Options {
	c.Validate()
	raw, err := json.Marshal(c.JSON())
	if err != nil {
		panic(fmt.Sprintf("chart: encode options: %v", err))
	}
	var o Options
	if err := json.Unmarshal(raw, &o); err != nil {
		panic(fmt.Sprintf("chart: decode options: %v", err))
	}
	return o
}

// NamedValue is a pie slice or gauge reading.
type NamedValue struct {
	Name  string
	Value float64
}

// Link is a sankey edge.
type Link struct {
	Source string
	Target string
	Value  int
}
