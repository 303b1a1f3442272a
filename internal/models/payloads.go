package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number accepts JSON numbers and numeric strings. The weather service
// forwards upstream values such as "temp_C": "28" unchanged.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// LoginResult is returned by the token endpoint.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserName    string `json:"user_name"`
	Role        string `json:"role"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// FarmerProfile is the farm record keyed by phone.
type FarmerProfile struct {
	Phone       string  `json:"phone"`
	Name        string  `json:"name,omitempty"`
	Location    string  `json:"location"`
	CropType    string  `json:"crop_type"`
	LandSize    float64 `json:"land_size"`
	SowingDate  string  `json:"sowing_date"`
	SoilType    string  `json:"soil_type"`
	GrowthStage string  `json:"growth_stage"`
}

// SowingRecommendation is the sowing-window advice for a crop.
type SowingRecommendation struct {
	Crop             string `json:"crop"`
	Location         string `json:"location"`
	Recommendation   string `json:"recommendation"`
	Warning          string `json:"warning"`
	Details          string `json:"details"`
	BestSowingWindow string `json:"best_sowing_window,omitempty"`
	Reasoning        string `json:"reasoning,omitempty"`
}

// FertilizerDosage is the per-stage dosage for a crop and land size.
type FertilizerDosage struct {
	Crop           string   `json:"crop"`
	LandSize       float64  `json:"land_size"`
	Stage          string   `json:"stage"`
	Recommendation []string `json:"recommendation"`
	Note           string   `json:"note"`
	Dosage         *Dosage  `json:"dosage,omitempty"`
}

// Dosage carries explicit fertilizer quantities in kilograms.
type Dosage struct {
	UreaKg Number `json:"Urea_kg"`
	DAPKg  Number `json:"DAP_kg"`
}

// AdvisoryStatus tracks what the farmer did with an advisory.
type AdvisoryStatus string

const (
	AdvisoryFollowed AdvisoryStatus = "followed"
	AdvisoryIgnored  AdvisoryStatus = "ignored"
	AdvisoryPending  AdvisoryStatus = "pending"
)

// Valid reports whether s is a known status.
func (s AdvisoryStatus) Valid() bool {
	switch s {
	case AdvisoryFollowed, AdvisoryIgnored, AdvisoryPending:
		return true
	}
	return false
}

// Advisory is one message sent to a farmer.
type Advisory struct {
	ID      string         `json:"id"`
	Date    string         `json:"date"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Status  AdvisoryStatus `json:"status"`
}

// PriorityFarmer is a farmer ranked by risk on the officer dashboard.
type PriorityFarmer struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Location  string  `json:"location"`
	RiskScore float64 `json:"risk_score"`
	Reason    string  `json:"reason"`
}

// AdoptionMetrics aggregates advisory adoption across farmers.
type AdoptionMetrics struct {
	AdoptionRate float64 `json:"adoption_rate"`
	TotalFarmers int     `json:"total_farmers"`
}

// PriorityList is the officer's risk ranking plus aggregate metrics.
type PriorityList struct {
	Farmers []PriorityFarmer `json:"priority_list"`
	Metrics *AdoptionMetrics `json:"metrics"`
}

// CropPatterns maps a crop to its share or count.
type CropPatterns map[string]float64

// FarmerLocation is a map point for a registered farmer.
type FarmerLocation struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Name      string  `json:"name"`
	CropType  string  `json:"crop_type"`
	RiskScore float64 `json:"risk_score"`
}

// PendingRecommendation is an AI suggestion awaiting officer review.
type PendingRecommendation struct {
	ID             string `json:"id"`
	Farmer         string `json:"farmer"`
	Type           string `json:"type"`
	Recommendation string `json:"recommendation"`
	Status         string `json:"status"`
}

// OutgoingAdvisory is the advisory body of an officer broadcast.
type OutgoingAdvisory struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	ValidUntil string `json:"valid_until"`
}

// Broadcast sends one advisory to several farmers.
type Broadcast struct {
	Phones   []string         `json:"phones"`
	Advisory OutgoingAdvisory `json:"advisory"`
}

// BroadcastResult reports how many farmers were reached.
type BroadcastResult struct {
	Sent int `json:"sent"`
}

// MarketPrice is one mandi quote.
type MarketPrice struct {
	Crop  string  `json:"crop"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
	Trend string  `json:"trend"`
}

// NewsItem is one agri-news headline.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// SubsidyQuery is the profile submitted to the eligibility check.
type SubsidyQuery struct {
	LandSize float64 `json:"land_size"`
	Category string  `json:"category"`
}

// SubsidyScheme is one scheme the profile qualifies for.
type SubsidyScheme struct {
	Name        string `json:"name"`
	Benefit     string `json:"benefit"`
	Eligibility string `json:"eligibility"`
	Link        string `json:"link"`
}

// CurrentWeather is the present-conditions block of a forecast.
type CurrentWeather struct {
	Temp      Number `json:"temp"`
	Humidity  Number `json:"humidity"`
	Condition string `json:"condition"`
}

// WeatherForecast is the forecast for a location.
type WeatherForecast struct {
	Location string          `json:"location"`
	Title    string          `json:"title"`
	Current  *CurrentWeather `json:"current"`
	Error    string          `json:"error,omitempty"`
}

// IrrigationSchedule is the watering advice for a crop.
type IrrigationSchedule struct {
	Crop         string `json:"crop"`
	Schedule     string `json:"schedule"`
	WeatherInput string `json:"weather_input"`
	Reason       string `json:"reason,omitempty"`
}

// Diagnosis is the leaf-disease classifier result.
type Diagnosis struct {
	Name       string  `json:"name"`
	Remedy     string  `json:"remedy"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
}

// ChatRequest is a message to the assistant.
type ChatRequest struct {
	Message string   `json:"message"`
	Lang    Language `json:"lang"`
	// Language duplicates Lang under the name the chat service reads.
	Language Language `json:"language"`
}

// ChatReply is the assistant's answer with an optional navigation hint.
type ChatReply struct {
	Response        string `json:"response"`
	Action          string `json:"action,omitempty"`
	ActionSuggested string `json:"action_suggested,omitempty"`
}

// NavigationTarget returns the module a reply asks to open, if any.
func (r ChatReply) NavigationTarget() (Module, bool) {
	for _, a := range []string{r.Action, r.ActionSuggested} {
		a = strings.TrimPrefix(strings.TrimSpace(a), "open_")
		if m, ok := ParseModule(a); ok {
			return m, true
		}
	}
	return "", false
}
