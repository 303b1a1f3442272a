// Package view maps backend payloads to view models. Nothing here does
// I/O: every function is a pure transform that paint adapters (terminal,
// HTTP) render as they see fit.
package view

import "github.com/krishichetan/kchetan/internal/models"

// Region names one independently painted area of a module.
type Region string

const (
	RegionProfileSetup Region = "dashboard.profile_setup"
	RegionStats        Region = "dashboard.stats"
	RegionSowing       Region = "dashboard.rec_sowing"
	RegionFertilizer   Region = "dashboard.rec_fert"
	RegionClimate      Region = "dashboard.rec_climate"
	RegionWeather      Region = "dashboard.weather"
	RegionIrrigation   Region = "dashboard.irrigation"
	RegionAdvisories   Region = "dashboard.advisory_history"

	RegionReviewQueue Region = "officer.review_queue"
	RegionPriority    Region = "officer.priority_list"
	RegionMetrics     Region = "officer.metrics"
	RegionCropChart   Region = "officer.crop_chart"
	RegionTrendChart  Region = "officer.trend_chart"
	RegionMap         Region = "officer.map"

	RegionPrices    Region = "market.prices"
	RegionNews      Region = "market.news"
	RegionSubsidies Region = "market.subsidies"

	RegionDiagnosis Region = "diagnose.result"

	RegionChat Region = "chat.transcript"
)

// Kind tells an adapter how to draw a Panel.
type Kind string

const (
	KindCards       Kind = "cards"
	KindList        Kind = "list"
	KindTable       Kind = "table"
	KindChart       Kind = "chart"
	KindMap         Kind = "map"
	KindChat        Kind = "chat"
	KindForm        Kind = "form"
	KindLoading     Kind = "loading"
	KindPlaceholder Kind = "placeholder"
)

// Tone is a semantic color hint.
type Tone string

const (
	ToneNeutral Tone = ""
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
	ToneAlert   Tone = "alert"
)

// Action is a control attached to a card.
type Action struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Card is the common widget: an icon, a headline value and details.
type Card struct {
	ID      string   `json:"id,omitempty"`
	Icon    string   `json:"icon,omitempty"`
	Title   string   `json:"title"`
	Value   string   `json:"value,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Badge   string   `json:"badge,omitempty"`
	Tone    Tone     `json:"tone,omitempty"`
	Link    string   `json:"link,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Table is a simple header + rows grid.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Chart is a single-series chart.
type Chart struct {
	Type   string    `json:"type"`
	Label  string    `json:"label,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// MarkerColor encodes farmer risk on the map.
type MarkerColor string

const (
	MarkerRed   MarkerColor = "#ff4b4b"
	MarkerAmber MarkerColor = "#ffb800"
	MarkerGreen MarkerColor = "#00ff88"
)

// Marker is one farmer on the officer map.
type Marker struct {
	Lat   float64     `json:"lat"`
	Lng   float64     `json:"lng"`
	Color MarkerColor `json:"color"`
	Name  string      `json:"name"`
	Crop  string      `json:"crop"`
	Risk  float64     `json:"risk"`
}

// MapView is the officer map: a fixed viewport plus markers.
type MapView struct {
	CenterLat float64  `json:"center_lat"`
	CenterLng float64  `json:"center_lng"`
	Zoom      int      `json:"zoom"`
	Markers   []Marker `json:"markers"`
}

// Field is one input of a form panel.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Sender is who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat transcript entry.
type Message struct {
	ID      string `json:"id"`
	Sender  Sender `json:"sender"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"`
}

// Panel is the view model painted into a Region.
type Panel struct {
	Kind        Kind      `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Cards       []Card    `json:"cards,omitempty"`
	Items       []string  `json:"items,omitempty"`
	Table       *Table    `json:"table,omitempty"`
	Chart       *Chart    `json:"chart,omitempty"`
	Map         *MapView  `json:"map,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
	Fields      []Field   `json:"fields,omitempty"`
}

// NavItem is one navigation entry.
type NavItem struct {
	Module   models.Module `json:"module"`
	LabelKey string        `json:"label_key"`
	Active   bool          `json:"active"`
	Hidden   bool          `json:"hidden"`
}
