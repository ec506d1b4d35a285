/*
params.go - Widget parameters of a demo page

PURPOSE:
  Each page declares the widgets it reads (select boxes, date pickers, a
  slider, a radio group). Resolving a page against the loaded tables fills
  the option lists from the data, applies defaults and validates the values
  supplied by the client, in declaration order. Later widgets can depend on
  earlier ones: the manufacturer list of the catalog growth page is drawn
  from the selected category, and only shown for the "manufacturer" scope.

DEFAULTS:
  select: option at DefaultIndex, clamped to the list (index 0 by default)
  date:   Default (YYYY-MM-DD), or today when Today is set
  slider: Default
  radio:  first choice

SEE ALSO:
  - registry.go: Resolve is called before every render
*/
package demos

import (
	"net/url"
	"strconv"
	"time"

	"github.com/warp/retail-dashboard/dataset"
)

// DateLayout is the wire format of date widgets.
const DateLayout = "2006-01-02"

// Kind is the widget type of a parameter.
type Kind string

const (
	KindSelect Kind = "select"
	KindDate   Kind = "date"
	KindSlider Kind = "slider"
	KindRadio  Kind = "radio"
)

// OptionsFunc lists the choices of a select widget given the values
// resolved so far.
type OptionsFunc func(t *dataset.Tables, v Values) []dataset.ID

// Param declares one widget.
type Param struct {
	Name  string
	Label string
	Kind  Kind

	// select
	Options      OptionsFunc
	DefaultIndex int

	// radio
	Choices []string

	// date
	Default string
	Today   bool

	// slider
	Min, Max, Step, DefaultInt int

	// When reports whether the widget is shown for the values so far.
	When func(v Values) bool
}

// ResolvedParam is a Param with its option list and current value.
type ResolvedParam struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
	Value   string   `json:"value"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Step    int      `json:"step,omitempty"`
}

// Values are the resolved widget values of one render.
type Values map[string]string

// ID returns a select value.
func (v Values) ID(name string) dataset.ID { return dataset.ID(v[name]) }

// String returns a raw value.
func (v Values) String(name string) string { return v[name] }

// Int returns a slider value; resolution guarantees it parses.
func (v Values) Int(name string) int {
	n, _ := strconv.Atoi(v[name])
	return n
}

// Date returns a date value; resolution guarantees it parses.
func (v Values) Date(name string) time.Time {
	t, _ := time.Parse(DateLayout, v[name])
	return t
}

// Resolve validates raw against params and fills defaults. now supplies the
// date for Today widgets.
func Resolve(params []Param, t *dataset.Tables, raw url.Values, now time.Time) ([]ResolvedParam, Values, error) {
	vals := make(Values, len(params))
	var out []ResolvedParam

	for _, p := range params {
		if p.When != nil && !p.When(vals) {
			continue
		}
		rp := ResolvedParam{Name: p.Name, Label: p.Label, Kind: p.Kind}
		given, supplied := raw[p.Name]
		value := ""
		if supplied && len(given) > 0 {
			value = given[0]
		}

		var err error
		switch p.Kind {
		case KindSelect:
			ids := p.Options(t, vals)
			rp.Options = make([]string, len(ids))
			for i, id := range ids {
				rp.Options[i] = string(id)
			}
			value, err = pick(p.Name, value, rp.Options, p.DefaultIndex)
		case KindRadio:
			rp.Options = p.Choices
			value, err = pick(p.Name, value, p.Choices, 0)
		case KindDate:
			value, err = resolveDate(p, value, now)
		case KindSlider:
			rp.Min, rp.Max, rp.Step = p.Min, p.Max, p.Step
			value, err = resolveSlider(p, value)
		}
		if err != nil {
			return nil, nil, err
		}

		rp.Value = value
		vals[p.Name] = value
		out = append(out, rp)
	}
	return out, vals, nil
}

func pick(name, value string, options []string, defaultIndex int) (string, error) {
	if value == "" {
		if len(options) == 0 {
			return "", nil
		}
		return options[min(defaultIndex, len(options)-1)], nil
	}
	for _, o := range options {
		if o == value {
			return value, nil
		}
	}
	return "", &ParamError{Name: name, Value: value, Reason: "not an available option"}
}

func resolveDate(p Param, value string, now time.Time) (string, error) {
	if value == "" {
		if p.Today || p.Default == "" {
			return now.Format(DateLayout), nil
		}
		return p.Default, nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return "", &ParamError{Name: p.Name, Value: value, Reason: "expected YYYY-MM-DD"}
	}
	return value, nil
}

func resolveSlider(p Param, value string) (string, error) {
	if value == "" {
		return strconv.Itoa(p.DefaultInt), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", &ParamError{Name: p.Name, Value: value, Reason: "expected an integer"}
	}
	if n < p.Min || n > p.Max {
		return "", &ParamError{Name: p.Name, Value: value, Reason: "out of range " + strconv.Itoa(p.Min) + ".." + strconv.Itoa(p.Max)}
	}
	if p.Step > 0 && (n-p.Min)%p.Step != 0 {
		return "", &ParamError{Name: p.Name, Value: value, Reason: "not a multiple of step " + strconv.Itoa(p.Step)}
	}
	return strconv.Itoa(n), nil
}

// =============================================================================
// OPTION SOURCES
// =============================================================================

// SalesOptions lists distinct values of col in the sales table.
func SalesOptions(col dataset.Column) OptionsFunc {
	return func(t *dataset.Tables, _ Values) []dataset.ID { return t.Options(col) }
}

// ProductOptions lists distinct values of col in the product table.
func ProductOptions(col dataset.Column) OptionsFunc {
	return func(t *dataset.Tables, _ Values) []dataset.ID { return t.ProductOptions(col) }
}
