package view

import (
	"fmt"
	"sort"

	"github.com/krishichetan/kchetan/internal/models"
)

// Risk thresholds for map markers.
const (
	HighRisk   = 70
	MediumRisk = 40
)

// Default officer map viewport (Satara district).
const (
	MapCenterLat = 17.68
	MapCenterLng = 74.00
	MapZoom      = 11
)

var chartPalette = []string{"#00ff88", "#00d4ff", "#ffb800", "#ff4b4b", "#a78bfa", "#f472b6"}

// ReviewQueue renders pending AI recommendations with an approve control.
func ReviewQueue(recs []models.PendingRecommendation) Panel {
	if len(recs) == 0 {
		return Panel{Kind: KindPlaceholder, Placeholder: NoPendingItems}
	}
	cards := make([]Card, 0, len(recs))
	for _, r := range recs {
		cards = append(cards, Card{
			ID:      r.ID,
			Icon:    "🤖",
			Title:   r.Type,
			Value:   r.Farmer,
			Detail:  r.Recommendation,
			Actions: []Action{{Name: "validate", Label: "Refine & Approve", Target: r.ID}},
		})
	}
	return Panel{Kind: KindCards, Cards: cards}
}

// Priority renders the risk ranking as a table.
func Priority(farmers []models.PriorityFarmer) Panel {
	if len(farmers) == 0 {
		return Panel{Kind: KindPlaceholder, Placeholder: NoHighRiskFarmers}
	}
	t := &Table{Columns: []string{"Farmer", "Risk", "Reason"}}
	for _, f := range farmers {
		name := f.Name
		if f.Phone != "" {
			name = fmt.Sprintf("%s (%s)", f.Name, f.Phone)
		}
		t.Rows = append(t.Rows, []string{name, formatNumber(f.RiskScore), f.Reason})
	}
	return Panel{Kind: KindTable, Table: t}
}

// Metrics renders the adoption summary. Missing metrics read as zero.
func Metrics(m *models.AdoptionMetrics) Panel {
	var v models.AdoptionMetrics
	if m != nil {
		v = *m
	}
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "📈", Title: "Adoption Rate", Value: formatNumber(v.AdoptionRate) + "%"},
		{Icon: "👥", Title: "Total Farmers", Value: fmt.Sprint(v.TotalFarmers)},
	}}
}

// CropChart renders crop distribution as a doughnut with sorted labels.
func CropChart(p models.CropPatterns) Panel {
	labels := make([]string, 0, len(p))
	for crop := range p {
		labels = append(labels, crop)
	}
	sort.Strings(labels)
	c := &Chart{Type: "doughnut", Labels: labels, Values: make([]float64, len(labels))}
	for i, l := range labels {
		c.Values[i] = p[l]
		c.Colors = append(c.Colors, chartPalette[i%len(chartPalette)])
	}
	return Panel{Kind: KindChart, Chart: c}
}

// AdoptionTrend is the weekly adoption series.
func AdoptionTrend() Panel {
	return Panel{Kind: KindChart, Chart: &Chart{
		Type:   "line",
		Label:  "Adoption %",
		Labels: []string{"Week 1", "Week 2", "Week 3", "Week 4"},
		Values: []float64{15, 28, 42, 58},
		Colors: []string{"#00ff88"},
	}}
}

// RiskColor maps a risk score to a marker color.
func RiskColor(score float64) MarkerColor {
	switch {
	case score > HighRisk:
		return MarkerRed
	case score > MediumRisk:
		return MarkerAmber
	default:
		return MarkerGreen
	}
}

// FarmerMap places one marker per located farmer. Entries with a zero
// coordinate have no location and are skipped.
func FarmerMap(locs []models.FarmerLocation) Panel {
	m := &MapView{CenterLat: MapCenterLat, CenterLng: MapCenterLng, Zoom: MapZoom, Markers: []Marker{}}
	for _, l := range locs {
		if l.Lat == 0 || l.Lng == 0 {
			continue
		}
		m.Markers = append(m.Markers, Marker{
			Lat:   l.Lat,
			Lng:   l.Lng,
			Color: RiskColor(l.RiskScore),
			Name:  l.Name,
			Crop:  l.CropType,
			Risk:  l.RiskScore,
		})
	}
	return Panel{Kind: KindMap, Map: m}
}
