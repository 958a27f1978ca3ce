package chart

import (
	"datagent/domain/datareadiness/ingestion"
)

// Type names a supported chart kind
type Type string

const (
	TypeLine      Type = "line"
	TypeBar       Type = "bar"
	TypeScatter   Type = "scatter"
	TypePie       Type = "pie"
	TypeHistogram Type = "histogram"
	TypeBox       Type = "box"
	TypeHeatmap   Type = "heatmap"
)

// Orientation of a bar chart
type Orientation string

const (
	Vertical   Orientation = "v"
	Horizontal Orientation = "h"
)

// Options tune individual chart kinds; zero values select the defaults
type Options struct {
	Orientation Orientation `json:"orientation,omitempty"`
	Bins        int         `json:"bins,omitempty"`
	Color       string      `json:"color,omitempty"`
	Size        string      `json:"size,omitempty"`
}

// Spec is a request to draw columns of a table as a chart
type Spec struct {
	Type    Type     `json:"type"`
	Columns []string `json:"columns"`
	Title   string   `json:"title,omitempty"`
	Options Options  `json:"options,omitempty"`
}

// Margin in pixels
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Layout carries the figure-wide presentation settings
type Layout struct {
	Title    string `json:"title,omitempty"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
	Template string `json:"template"`
	Margin   Margin `json:"margin"`
}

// Trace is one plotted series in plotly's figure schema
type Trace struct {
	Type        string            `json:"type"`
	Name        string            `json:"name,omitempty"`
	Mode        string            `json:"mode,omitempty"`
	Orientation Orientation       `json:"orientation,omitempty"`
	X           []ingestion.Value `json:"x,omitempty"`
	Y           []ingestion.Value `json:"y,omitempty"`
	Z           [][]*float64      `json:"z,omitempty"`
	Labels      []ingestion.Value `json:"labels,omitempty"`
	Values      []ingestion.Value `json:"values,omitempty"`
	NBinsX      int               `json:"nbinsx,omitempty"`
	Marker      *Marker           `json:"marker,omitempty"`
}

// Marker maps per-point colour and size to table columns
type Marker struct {
	Color []ingestion.Value `json:"color,omitempty"`
	Size  []ingestion.Value `json:"size,omitempty"`
}

// Figure is a complete chart ready for a plotly front end
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Result is the outcome of rendering a Spec
type Result struct {
	Success     bool     `json:"success"`
	PlotData    *Figure  `json:"plot_data,omitempty"`
	Type        Type     `json:"type,omitempty"`
	ColumnsUsed []string `json:"columns_used,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Failed builds an unsuccessful result
func Failed(message string) Result {
	return Result{Error: message}
}

// Suggestion is a chart proposed for a set of columns
type Suggestion struct {
	Type    Type     `json:"type"`
	Columns []string `json:"columns"`
	Title   string   `json:"title"`
}

// Spec converts the suggestion into a renderable request
func (s Suggestion) Spec() Spec {
	return Spec{Type: s.Type, Columns: s.Columns, Title: s.Title}
}
