package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishichetan/kchetan/internal/models"
)

func TestAdvisoryHistory(t *testing.T) {
	t.Run("empty shows placeholder", func(t *testing.T) {
		p := AdvisoryHistory(nil)
		assert.Equal(t, KindPlaceholder, p.Kind)
		assert.Equal(t, NoAdvisories, p.Placeholder)
		assert.Empty(t, p.Cards)
	})

	t.Run("controls only for pending", func(t *testing.T) {
		advs := []models.Advisory{
			{ID: "a1", Date: "2025-12-01T10:00:00", Type: "pest", Message: "Spray neem", Status: models.AdvisoryPending},
			{ID: "a2", Date: "2025-11-20", Type: "irrigation", Message: "Skip watering", Status: models.AdvisoryFollowed},
			{ID: "a3", Date: "bad", Type: "weather", Message: "Rain", Status: models.AdvisoryIgnored},
		}
		p := AdvisoryHistory(advs)
		require.Len(t, p.Cards, 3)

		want := []Action{
			{Name: "followed", Label: "Follow", Target: "a1"},
			{Name: "ignored", Label: "Ignore", Target: "a1"},
		}
		if diff := cmp.Diff(want, p.Cards[0].Actions); diff != "" {
			t.Errorf("pending actions mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "PEST", p.Cards[0].Title)
		assert.Equal(t, "1 Dec 2025", p.Cards[0].Value)

		assert.Empty(t, p.Cards[1].Actions)
		assert.Equal(t, "✅ Followed", p.Cards[1].Badge)
		assert.Equal(t, "20 Nov 2025", p.Cards[1].Value)

		assert.Empty(t, p.Cards[2].Actions)
		assert.Equal(t, "❌ Ignored", p.Cards[2].Badge)
		assert.Equal(t, "bad", p.Cards[2].Value)
	})
}

func TestRiskColor(t *testing.T) {
	tests := []struct {
		score float64
		want  MarkerColor
	}{
		{0, MarkerGreen},
		{39.9, MarkerGreen},
		{40, MarkerGreen},
		{40.1, MarkerAmber},
		{55, MarkerAmber},
		{70, MarkerAmber},
		{70.5, MarkerRed},
		{71, MarkerRed},
		{100, MarkerRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskColor(tt.score), "score %v", tt.score)
	}
}

func TestFarmerMap(t *testing.T) {
	p := FarmerMap([]models.FarmerLocation{
		{Lat: 17.7, Lng: 74.0, Name: "Ramesh", CropType: "Wheat", RiskScore: 71},
		{Lat: 0, Lng: 74.1, Name: "NoLat"},
		{Lat: 17.6, Lng: 0, Name: "NoLng"},
		{Lat: 17.65, Lng: 73.9, Name: "Sita", CropType: "Rice", RiskScore: 40},
	})
	require.Equal(t, KindMap, p.Kind)
	want := &MapView{
		CenterLat: MapCenterLat,
		CenterLng: MapCenterLng,
		Zoom:      MapZoom,
		Markers: []Marker{
			{Lat: 17.7, Lng: 74.0, Color: MarkerRed, Name: "Ramesh", Crop: "Wheat", Risk: 71},
			{Lat: 17.65, Lng: 73.9, Color: MarkerGreen, Name: "Sita", Crop: "Rice", Risk: 40},
		},
	}
	if diff := cmp.Diff(want, p.Map); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
}

func TestOfficerEmptyStates(t *testing.T) {
	assert.Equal(t, NoPendingItems, ReviewQueue(nil).Placeholder)
	assert.Equal(t, NoHighRiskFarmers, Priority(nil).Placeholder)
}

func TestPriority(t *testing.T) {
	p := Priority([]models.PriorityFarmer{{Name: "Suresh", Phone: "9000000001", RiskScore: 82, Reason: "Pest outbreak"}})
	want := &Table{
		Columns: []string{"Farmer", "Risk", "Reason"},
		Rows:    [][]string{{"Suresh (9000000001)", "82", "Pest outbreak"}},
	}
	if diff := cmp.Diff(want, p.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestMetrics(t *testing.T) {
	p := Metrics(&models.AdoptionMetrics{AdoptionRate: 61.5, TotalFarmers: 40})
	assert.Equal(t, "61.5%", p.Cards[0].Value)
	assert.Equal(t, "40", p.Cards[1].Value)

	p = Metrics(nil)
	assert.Equal(t, "0%", p.Cards[0].Value)
	assert.Equal(t, "0", p.Cards[1].Value)
}

func TestCropChartSortsLabels(t *testing.T) {
	p := CropChart(models.CropPatterns{"Wheat": 40, "Cotton": 25, "Rice": 35})
	require.NotNil(t, p.Chart)
	assert.Equal(t, []string{"Cotton", "Rice", "Wheat"}, p.Chart.Labels)
	assert.Equal(t, []float64{25, 35, 40}, p.Chart.Values)
	assert.Len(t, p.Chart.Colors, 3)
}

func TestAdoptionTrend(t *testing.T) {
	c := AdoptionTrend().Chart
	assert.Equal(t, []float64{15, 28, 42, 58}, c.Values)
	assert.Len(t, c.Labels, 4)
}

func TestDashboardCards(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		p := Stats(models.FarmerProfile{CropType: "Wheat", Location: "Satara", LandSize: 2.5, SowingDate: "2025-11-01"})
		require.Len(t, p.Cards, 3)
		assert.Equal(t, "Wheat", p.Cards[0].Value)
		assert.Equal(t, "2.5 Acres", p.Cards[0].Detail)
		assert.Equal(t, "Satara", p.Cards[1].Value)
	})

	t.Run("sowing prefers window", func(t *testing.T) {
		p := Sowing(models.SowingRecommendation{BestSowingWindow: "Nov 1-15", Reasoning: "Cool nights", Recommendation: "old"})
		assert.Equal(t, "Nov 1-15", p.Cards[0].Value)
		assert.Equal(t, "Cool nights", p.Cards[0].Detail)

		p = Sowing(models.SowingRecommendation{Recommendation: "Sow now", Warning: "Heat"})
		assert.Equal(t, "Sow now", p.Cards[0].Value)
		assert.Equal(t, ToneWarn, p.Cards[0].Tone)
	})

	t.Run("fertilizer", func(t *testing.T) {
		p := Fertilizer(models.FertilizerDosage{Dosage: &models.Dosage{UreaKg: 50, DAPKg: 25.5}})
		assert.Equal(t, "Urea: 50kg, DAP: 25.5kg", p.Cards[0].Value)

		p = Fertilizer(models.FertilizerDosage{Recommendation: []string{"Apply urea", "Apply DAP"}})
		assert.Equal(t, "Apply urea\nApply DAP", p.Cards[0].Value)
	})

	t.Run("climate", func(t *testing.T) {
		assert.Equal(t, "Safe", Climate().Cards[0].Value)
	})

	t.Run("weather", func(t *testing.T) {
		p := Weather(models.WeatherForecast{Location: "Satara", Current: &models.CurrentWeather{Temp: 31, Humidity: 45, Condition: "Sunny"}})
		assert.Equal(t, "31°C", p.Cards[0].Value)
		assert.Equal(t, "Sunny, humidity 45%", p.Cards[0].Detail)

		p = Weather(models.WeatherForecast{Error: "Offline"})
		assert.Equal(t, KindPlaceholder, p.Kind)
		assert.Equal(t, "Weather unavailable (Offline)", p.Placeholder)
	})

	t.Run("irrigation", func(t *testing.T) {
		p := Irrigation(models.IrrigationSchedule{Schedule: "Every 3 days", WeatherInput: "31C"})
		assert.Equal(t, "Every 3 days", p.Cards[0].Value)
		assert.Equal(t, "31C", p.Cards[0].Detail)
	})

	t.Run("setup form", func(t *testing.T) {
		p := ProfileSetup()
		assert.Equal(t, KindForm, p.Kind)
		assert.Len(t, p.Fields, 5)
	})
}

func TestMarket(t *testing.T) {
	p := Prices([]models.MarketPrice{
		{Crop: "Wheat", Price: 2450, Unit: "quintal", Trend: "up"},
		{Crop: "Onion", Price: 1800, Trend: "down"},
	})
	require.Len(t, p.Cards, 2)
	assert.Equal(t, "📈", p.Cards[0].Icon)
	assert.Equal(t, "₹2450", p.Cards[0].Value)
	assert.Equal(t, "per quintal", p.Cards[0].Detail)
	assert.Equal(t, "📉", p.Cards[1].Icon)
	assert.Equal(t, "per unit", p.Cards[1].Detail)
	assert.Equal(t, "DOWN", p.Cards[1].Badge)

	n := News([]models.NewsItem{{Title: "MSP raised", Source: "PIB"}, {Title: "Rain ahead"}})
	assert.Equal(t, []string{"PIB: MSP raised", "Rain ahead"}, n.Items)

	s := Subsidies([]models.SubsidyScheme{{Name: "PM-KISAN", Benefit: "₹6000/yr", Link: "https://pmkisan.gov.in"}})
	assert.Equal(t, "PM-KISAN", s.Cards[0].Title)
	assert.Equal(t, "https://pmkisan.gov.in", s.Cards[0].Link)
}

func TestDiagnosisResult(t *testing.T) {
	tests := []struct {
		conf float64
		want int
	}{
		{0.984, 98},
		{0.987, 99},
		{1, 100},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidencePercent(tt.conf))
	}

	p := DiagnosisResult(models.Diagnosis{Name: "Leaf Rust", Remedy: "Use fungicide", Confidence: 0.92, Model: "cnn-v2"})
	assert.Equal(t, "Confidence: 92%", p.Cards[0].Value)
	assert.Equal(t, "cnn-v2", p.Cards[0].Badge)
	assert.Equal(t, KindLoading, Loading().Kind)
}

func TestTranscript(t *testing.T) {
	var tr Transcript
	tr = tr.AppendUser("u1", "X")
	tr = tr.AppendPending("b1")
	assert.Equal(t, 1, tr.Pending())

	before := tr
	tr = tr.Resolve("b1", "Hello")

	want := []Message{
		{ID: "u1", Sender: SenderUser, Text: "X"},
		{ID: "b1", Sender: SenderBot, Text: "Hello"},
	}
	if diff := cmp.Diff(want, tr.Messages); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, tr.Pending())
	assert.True(t, before.Messages[1].Pending, "resolve must not modify the previous value")

	tr = tr.Resolve("gone", "late")
	assert.Len(t, tr.Messages, 3)
	assert.Equal(t, KindChat, tr.Panel().Kind)
}

func TestNavigation(t *testing.T) {
	nav := Navigation(models.RoleOfficer, models.ModuleOfficer)
	require.Len(t, nav, len(models.Modules))
	for _, it := range nav {
		assert.Equal(t, it.Module == models.ModuleDiagnose, it.Hidden, it.Module)
		assert.Equal(t, it.Module == models.ModuleOfficer, it.Active, it.Module)
		assert.Equal(t, "nav_"+string(it.Module), it.LabelKey)
	}

	for _, it := range Navigation(models.RoleFarmer, models.ModuleDashboard) {
		assert.Equal(t, it.Module == models.ModuleOfficer, it.Hidden, it.Module)
	}

	assert.Equal(t, models.ModuleOfficer, InitialModule(models.RoleOfficer))
	assert.Equal(t, models.ModuleDashboard, InitialModule(models.RoleFarmer))
}
