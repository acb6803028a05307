// Package units converts values between the degrees of a measurement
// scale and picks the most readable degree for display.
//
// A scale either climbs a fixed power ladder (bytes: each degree is 1024
// of the one below) or is a graph of explicit conversions between
// degrees (time: a minute is 60 seconds, a day is 24 hours). Indirect
// conversions on a graph scale are derived by searching the graph.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownDegree is returned when a degree name or symbol is not part of a scale.
var ErrUnknownDegree = errors.New("unknown degree")

// Degree is one named unit of a scale, e.g. kilobyte or hour.
type Degree struct {
	Name   string
	Symbol string
	Power  int

	conversions map[string]float64
	connections map[string]*Degree
	order       []string
}

// NewDegree creates a degree. Power is only meaningful on ladder scales.
func NewDegree(name, symbol string, power int) *Degree {
	return &Degree{
		Name:        name,
		Symbol:      symbol,
		Power:       power,
		conversions: make(map[string]float64),
		connections: make(map[string]*Degree),
	}
}

// AddConversion records that one unit of d equals factor units of other,
// and the inverse on other.
func (d *Degree) AddConversion(other *Degree, factor float64) {
	d.link(other, factor)
	other.link(d, 1/factor)
}

func (d *Degree) link(other *Degree, factor float64) {
	if _, ok := d.conversions[other.Name]; !ok {
		d.order = append(d.order, other.Name)
	}
	d.conversions[other.Name] = factor
	d.connections[other.Name] = other
}

// FindConversion searches the conversion graph depth first and returns
// the factor from d to the named degree, or 0 if no path exists.
func (d *Degree) FindConversion(name string) float64 {
	return d.findConversion(name, map[string]bool{}, 1)
}

func (d *Degree) findConversion(name string, visited map[string]bool, current float64) float64 {
	if visited[d.Name] {
		return 0
	}
	visited[d.Name] = true
	for _, next := range d.order {
		factor := current * d.conversions[next]
		if next == name {
			return factor
		}
		branch := make(map[string]bool, len(visited))
		for k := range visited {
			branch[k] = true
		}
		if found := d.connections[next].findConversion(name, branch, factor); found != 0 {
			return found
		}
	}
	return 0
}

// Scale is an ordered set of degrees measuring one quantity.
type Scale struct {
	Name string

	// Interval is the ratio between neighbouring powers on a ladder
	// scale. Zero means conversions come from the degree graph.
	Interval float64

	degrees  []*Degree
	byName   map[string]*Degree
	bySymbol map[string]*Degree
}

// NewScale creates a scale with base as its first degree.
func NewScale(name string, base *Degree, interval float64) *Scale {
	s := &Scale{
		Name:     name,
		Interval: interval,
		byName:   make(map[string]*Degree),
		bySymbol: make(map[string]*Degree),
	}
	s.add(base)
	return s
}

func (s *Scale) add(d *Degree) {
	if _, ok := s.byName[d.Name]; ok {
		return
	}
	s.degrees = append(s.degrees, d)
	s.byName[d.Name] = d
	s.bySymbol[d.Symbol] = d
}

// DefinePower adds a degree to a ladder scale.
func (s *Scale) DefinePower(d *Degree) {
	s.add(d)
}

// DefineInterval adds both degrees if needed, records that one from
// equals factor to, and derives every other pairwise conversion.
func (s *Scale) DefineInterval(from, to *Degree, factor float64) {
	s.add(from)
	s.add(to)
	from.AddConversion(to, factor)
	s.connectAll()
}

func (s *Scale) connectAll() {
	for _, d1 := range s.degrees {
		for _, d2 := range s.degrees {
			if d1 == d2 {
				continue
			}
			if _, ok := d1.conversions[d2.Name]; ok {
				continue
			}
			if factor := d1.FindConversion(d2.Name); factor != 0 {
				d1.AddConversion(d2, factor)
			}
		}
	}
}

// Degrees returns the degrees in definition order.
func (s *Scale) Degrees() []*Degree {
	return append([]*Degree(nil), s.degrees...)
}

// Degree looks a degree up by name.
func (s *Scale) Degree(name string) (*Degree, error) {
	d, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", s.Name, ErrUnknownDegree, name)
	}
	return d, nil
}

// DegreeBySymbol looks a degree up by symbol.
func (s *Scale) DegreeBySymbol(symbol string) (*Degree, error) {
	d, ok := s.bySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", s.Name, ErrUnknownDegree, symbol)
	}
	return d, nil
}

// Convert converts value from one degree to another, both given by name.
func (s *Scale) Convert(value float64, from, to string) (float64, error) {
	d1, err := s.Degree(from)
	if err != nil {
		return 0, err
	}
	d2, err := s.Degree(to)
	if err != nil {
		return 0, err
	}
	return s.convert(value, d1, d2)
}

func (s *Scale) convert(value float64, from, to *Degree) (float64, error) {
	if from == to {
		return value, nil
	}
	if s.Interval > 0 {
		return value * math.Pow(s.Interval, float64(from.Power-to.Power)), nil
	}
	factor, ok := from.conversions[to.Name]
	if !ok {
		return 0, fmt.Errorf("%s: no conversion from %s to %s", s.Name, from.Name, to.Name)
	}
	return value * factor, nil
}

// singular drops a plural symbol to the degree name when value reads as one.
func (s *Scale) singular(d *Degree, value float64) string {
	if value == 1 && strings.TrimRight(d.Symbol, "s") == d.Name {
		return d.Name
	}
	return d.Symbol
}

// Value is an amount expressed in one degree of a scale.
type Value struct {
	Amount float64
	Degree *Degree

	scale *Scale
}

// New creates a value in the named degree.
func (s *Scale) New(amount float64, degree string) (Value, error) {
	d, err := s.Degree(degree)
	if err != nil {
		return Value{}, err
	}
	return Value{Amount: amount, Degree: d, scale: s}, nil
}

// As returns the amount converted to the named degree.
func (v Value) As(degree string) (float64, error) {
	return v.scale.Convert(v.Amount, v.Degree.Name, degree)
}

// To returns the value converted to the named degree.
func (v Value) To(degree string) (Value, error) {
	d, err := v.scale.Degree(degree)
	if err != nil {
		return Value{}, err
	}
	amount, err := v.scale.convert(v.Amount, v.Degree, d)
	if err != nil {
		return Value{}, err
	}
	return Value{Amount: amount, Degree: d, scale: v.scale}, nil
}

// FindBest picks the degree that reads best: amounts of at least minimum
// beat smaller ones, then the smaller whole part wins. Degrees are tried in
// definition order and the first candidate keeps a tie.
func (v Value) FindBest(minimum float64) (float64, *Degree) {
	bestAmount, bestDegree := v.Amount, v.Degree
	for _, d := range v.scale.degrees {
		amount, err := v.scale.convert(v.Amount, v.Degree, d)
		if err != nil {
			continue
		}
		enough := amount >= minimum
		bestEnough := bestAmount >= minimum
		if bestEnough && !enough {
			continue
		}
		if enough && !bestEnough {
			bestAmount, bestDegree = amount, d
			continue
		}
		if whole, bestWhole := math.Trunc(amount), math.Trunc(bestAmount); whole < bestWhole {
			bestAmount, bestDegree = amount, d
		}
	}
	return bestAmount, bestDegree
}

// Best renders the value in its best degree, e.g. "1.5 KB" or "1 hour".
// Trailing zeros are stripped; digits < 0 disables rounding.
func (v Value) Best(digits int, minimum float64, sep string) string {
	amount, d := v.FindBest(minimum)
	text := strconv.FormatFloat(amount, 'f', -1, 64)
	if digits >= 0 {
		amount = Round(amount, digits)
		text = strconv.FormatFloat(amount, 'f', digits, 64)
	}
	if strings.Contains(text, ".") {
		text = strings.TrimRight(strings.TrimRight(text, "0"), ".")
	}
	return text + sep + v.scale.singular(d, amount)
}

// ToBest returns the value converted to the degree FindBest picks.
func (v Value) ToBest(minimum float64) Value {
	amount, d := v.FindBest(minimum)
	return Value{Amount: amount, Degree: d, scale: v.scale}
}

// FindBestAccurate picks the degree with the shortest rendering among those
// that still represent the value to accuracy significant digits: rounding
// the amount in that degree and converting it back must round to the same
// original value. Equal lengths are settled by the smaller whole part.
func (v Value) FindBestAccurate(accuracy int) (float64, *Degree) {
	original := RoundSignificant(v.Amount, accuracy)
	bestAmount, bestDegree := v.Amount, v.Degree
	for _, d := range v.scale.degrees {
		if d == bestDegree {
			continue
		}
		amount, err := v.scale.convert(v.Amount, v.Degree, d)
		if err != nil {
			continue
		}
		rounded := RoundSignificant(amount, accuracy)
		back, err := v.scale.convert(rounded, d, v.Degree)
		if err != nil || RoundSignificant(back, accuracy) != original {
			continue
		}
		length := len(floatText(rounded))
		bestLength := len(floatText(RoundSignificant(bestAmount, accuracy)))
		if length > bestLength {
			continue
		}
		if length < bestLength || math.Trunc(amount) < math.Trunc(bestAmount) {
			bestAmount, bestDegree = amount, d
		}
	}
	return bestAmount, bestDegree
}

// ToBestAccurate returns the value converted to the degree FindBestAccurate picks.
func (v Value) ToBestAccurate(accuracy int) Value {
	amount, d := v.FindBestAccurate(accuracy)
	return Value{Amount: amount, Degree: d, scale: v.scale}
}

// BestAccurate renders the value in the degree FindBestAccurate picks,
// e.g. 5 GiB stored as bytes reads "5 GB". With round the amount is cut
// to accuracy significant digits.
func (v Value) BestAccurate(accuracy int, round bool, sep string) string {
	amount, d := v.FindBestAccurate(accuracy)
	if round {
		amount = RoundSignificant(amount, accuracy)
	}
	text := strconv.FormatFloat(amount, 'f', -1, 64)
	if strings.Contains(text, ".") {
		text = strings.TrimRight(strings.TrimRight(text, "0"), ".")
	}
	return text + sep + v.scale.singular(d, Round(amount, 2))
}

// floatText is the shortest decimal form of x with at least one fractional
// digit, switching to exponent form for very small or very large
// magnitudes. Its length measures how compact a rendering is.
func floatText(x float64) string {
	if x == 0 {
		return "0"
	}
	if a := math.Abs(x); a < 1e-4 || a >= 1e16 {
		return strconv.FormatFloat(x, 'e', -1, 64)
	}
	text := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// String renders the value with two decimals and a space separator.
func (v Value) String() string {
	return v.Best(2, 0.5, " ")
}

// Round rounds x to the given number of decimal digits. Negative digits
// round to tens, hundreds and so on.
func Round(x float64, digits int) float64 {
	if digits < 0 {
		p := math.Pow(10, float64(-digits))
		return math.Round(x/p) * p
	}
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}

// RoundSignificant rounds x to n significant digits.
func RoundSignificant(x float64, n int) float64 {
	if x < 0 {
		return -RoundSignificant(-x, n)
	}
	if x == 0 {
		return 0
	}
	return Round(x, -int(math.Floor(math.Log10(x)))+n-1)
}
