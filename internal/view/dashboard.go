package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/krishichetan/kchetan/internal/models"
)

// Placeholder texts for empty lists.
const (
	NoAdvisories      = "No past advisories found."
	NoPendingItems    = "No pending items."
	NoHighRiskFarmers = "No high-risk farmers."
	WeatherOffline    = "Weather unavailable"
)

// ProfileSetup is the form shown when a farmer has no profile yet.
func ProfileSetup() Panel {
	return Panel{
		Kind:        KindForm,
		Placeholder: "Complete your farm profile to get recommendations.",
		Fields: []Field{
			{Name: "location", Label: "Location", Type: "text"},
			{Name: "crop_type", Label: "Crop", Type: "text"},
			{Name: "land_size", Label: "Land size (acres)", Type: "number"},
			{Name: "sowing_date", Label: "Sowing date", Type: "date"},
			{Name: "soil_type", Label: "Soil type", Type: "text"},
		},
	}
}

// Stats summarizes the farmer profile in three cards.
func Stats(p models.FarmerProfile) Panel {
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "🌾", Title: "Crop", Value: p.CropType, Detail: formatNumber(p.LandSize) + " Acres"},
		{Icon: "📍", Title: "Location", Value: p.Location},
		{Icon: "📅", Title: "Season", Value: p.SowingDate, Detail: "Sowing Date"},
	}}
}

// Sowing renders the sowing-window card. Newer backends send
// best_sowing_window and reasoning, older ones recommendation and warning.
func Sowing(r models.SowingRecommendation) Panel {
	value := firstNonEmpty(r.BestSowingWindow, r.Recommendation)
	detail := firstNonEmpty(r.Reasoning, r.Warning, r.Details)
	tone := ToneNeutral
	if r.Warning != "" {
		tone = ToneWarn
	}
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "🌱", Title: "Sowing Window", Value: value, Detail: detail, Tone: tone},
	}}
}

// Fertilizer renders the dosage card.
func Fertilizer(d models.FertilizerDosage) Panel {
	var value string
	if d.Dosage != nil {
		value = fmt.Sprintf("Urea: %skg, DAP: %skg",
			formatNumber(float64(d.Dosage.UreaKg)), formatNumber(float64(d.Dosage.DAPKg)))
	} else {
		value = strings.Join(d.Recommendation, "\n")
	}
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "🧪", Title: "Fertilizer", Value: value, Detail: d.Note},
	}}
}

// Climate is the static climate-risk card.
func Climate() Panel {
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "🌡️", Title: "Climate Risk", Value: "Safe", Detail: "No heatwave expected", Tone: ToneGood},
	}}
}

// Weather renders current conditions. A forecast without a current block
// (the backend's offline fallback) becomes a placeholder.
func Weather(f models.WeatherForecast) Panel {
	if f.Current == nil {
		msg := WeatherOffline
		if f.Error != "" {
			msg += " (" + f.Error + ")"
		}
		return Panel{Kind: KindPlaceholder, Placeholder: msg}
	}
	c := f.Current
	return Panel{Kind: KindCards, Cards: []Card{{
		Icon:   "🌤️",
		Title:  firstNonEmpty(f.Location, "Weather"),
		Value:  formatNumber(float64(c.Temp)) + "°C",
		Detail: fmt.Sprintf("%s, humidity %s%%", c.Condition, formatNumber(float64(c.Humidity))),
	}}}
}

// Irrigation renders the watering advice card.
func Irrigation(s models.IrrigationSchedule) Panel {
	return Panel{Kind: KindCards, Cards: []Card{
		{Icon: "💧", Title: "Irrigation", Value: s.Schedule, Detail: firstNonEmpty(s.Reason, s.WeatherInput)},
	}}
}

// AdvisoryHistory renders one card per advisory. Only pending advisories
// get follow/ignore controls.
func AdvisoryHistory(advs []models.Advisory) Panel {
	if len(advs) == 0 {
		return Panel{Kind: KindPlaceholder, Placeholder: NoAdvisories}
	}
	cards := make([]Card, 0, len(advs))
	for _, a := range advs {
		c := Card{
			ID:     a.ID,
			Icon:   "📢",
			Title:  strings.ToUpper(a.Type),
			Value:  formatDate(a.Date),
			Detail: a.Message,
		}
		switch a.Status {
		case models.AdvisoryFollowed:
			c.Badge, c.Tone = "✅ Followed", ToneGood
		case models.AdvisoryIgnored:
			c.Badge, c.Tone = "❌ Ignored", ToneAlert
		case models.AdvisoryPending:
			c.Actions = []Action{
				{Name: string(models.AdvisoryFollowed), Label: "Follow", Target: a.ID},
				{Name: string(models.AdvisoryIgnored), Label: "Ignore", Target: a.ID},
			}
		}
		cards = append(cards, c)
	}
	return Panel{Kind: KindCards, Cards: cards}
}

// Loading is the transient indicator shown while a result is computed.
func Loading() Panel {
	return Panel{Kind: KindLoading, Placeholder: "Analyzing..."}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

func formatDate(s string) string {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format("2 Jan 2006")
		}
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
