// Package apitest runs an in-process fake of the Krishi-Chetan backend for
// tests. Routes are keyed by their chi pattern, e.g.
// "GET /api/farmer/profile/{phone}".
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/krishichetan/kchetan/internal/models"
)

// Route patterns served by Backend.
const (
	RouteLogin          = "POST /api/auth/token"
	RouteRegister       = "POST /api/auth/register"
	RouteProfile        = "GET /api/farmer/profile/{phone}"
	RouteSaveProfile    = "POST /api/farmer/profile"
	RouteSowing         = "GET /api/farmer/sowing-recommendation"
	RouteFertilizer     = "GET /api/farmer/fertilizer-dosage"
	RouteHistory        = "GET /api/farmer/advisory-history/{phone}"
	RouteAdvisoryStatus = "POST /api/farmer/advisory/{phone}/{id}/status"
	RoutePriority       = "GET /api/officer/priority-list"
	RouteCropPatterns   = "GET /api/officer/crop-patterns"
	RouteFarmers        = "GET /api/officer/farmers"
	RoutePendingRecs    = "GET /api/officer/pending-recs"
	RouteValidateRec    = "POST /api/officer/validate-rec/{id}"
	RouteSendAdvisory   = "POST /api/officer/send-advisory"
	RoutePrices         = "GET /api/market/prices"
	RouteNews           = "GET /api/market/news"
	RouteSubsidy        = "POST /api/subsidy/check"
	RouteForecast       = "GET /api/weather/forecast"
	RouteIrrigation     = "POST /api/weather/irrigation-schedule"
	RouteDiagnose       = "POST /api/diagnose/leaf"
	RouteChat           = "POST /api/chat/ask"
)

// Call is one recorded request.
type Call struct {
	Route  string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// Backend is a scriptable fake backend.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	calls    []Call
	failures map[string]int
	gates    map[string]chan struct{}

	Profiles     map[string]models.FarmerProfile
	Advisories   map[string][]models.Advisory
	Priority     models.PriorityList
	Patterns     models.CropPatterns
	Locations    []models.FarmerLocation
	Pending      []models.PendingRecommendation
	Reply        models.ChatReply
	Diagnosis    models.Diagnosis
	Passwords    map[string]string
	LoginResults map[string]models.LoginResult
}

// New starts a Backend seeded with one farmer profile and closes it when
// the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		failures: map[string]int{},
		gates:    map[string]chan struct{}{},
		Profiles: map[string]models.FarmerProfile{
			"9876543210": {
				Phone: "9876543210", Name: "Ramesh", Location: "Satara", CropType: "Wheat",
				LandSize: 2.5, SowingDate: "2025-11-02", SoilType: "loamy", GrowthStage: "Vegetative",
			},
		},
		Advisories: map[string][]models.Advisory{
			"9876543210": {
				{ID: "a1", Date: "2025-12-01T09:00:00", Type: "irrigation", Message: "Irrigate in the evening.", Status: models.AdvisoryPending},
				{ID: "a2", Date: "2025-11-20T09:00:00", Type: "pest", Message: "Spray neem oil.", Status: models.AdvisoryFollowed},
			},
		},
		Priority: models.PriorityList{
			Farmers: []models.PriorityFarmer{{Name: "Suresh", Phone: "9000000001", Location: "Satara", RiskScore: 82, Reason: "High Pest Risk Prediction"}},
			Metrics: &models.AdoptionMetrics{AdoptionRate: 61.5, TotalFarmers: 40},
		},
		Patterns: models.CropPatterns{"Wheat": 50, "Rice": 30, "Onion": 20},
		Locations: []models.FarmerLocation{
			{Lat: 17.68, Lng: 74.0, Name: "Suresh", CropType: "Wheat", RiskScore: 82},
			{Lat: 17.7, Lng: 74.1, Name: "Ganesh", CropType: "Rice", RiskScore: 40},
		},
		Pending: []models.PendingRecommendation{
			{ID: "ai_1", Farmer: "9876543210", Type: "Soil AI", Recommendation: "Use 20kg extra Urea for Wheat.", Status: "pending"},
		},
		Reply:     models.ChatReply{Response: "Irrigation is recommended in the evening."},
		Diagnosis: models.Diagnosis{Name: "Early Blight", Remedy: "Apply Chlorothalonil.", Confidence: 0.98, Model: "mobilenet-v2"},
		Passwords: map[string]string{"9876543210": "farmer123", "9876543211": "officer123"},
		LoginResults: map[string]models.LoginResult{
			"9876543210": {AccessToken: "farmer-token", TokenType: "bearer", UserName: "Test Farmer", Role: "farmer"},
			"9876543211": {AccessToken: "officer-token", TokenType: "bearer", UserName: "Test Officer", Role: "officer"},
		},
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Fail makes route answer with status until cleared with Fail(route, 0).
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Block holds every request to route until the returned release is called.
func (b *Backend) Block(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[route] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, route)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns the recorded requests for route.
func (b *Backend) Calls(route string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

// Hits counts the requests made to route.
func (b *Backend) Hits(route string) int {
	return len(b.Calls(route))
}

// TotalHits counts every request made to the backend.
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// SetReply changes the chat answer.
func (b *Backend) SetReply(r models.ChatReply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Reply = r
}

// Reset forgets recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) handle(r chi.Router, route string, h func(w http.ResponseWriter, r *http.Request) any) {
	method, pattern := splitRoute(route)
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		body := readAll(req)

		b.mu.Lock()
		b.calls = append(b.calls, Call{Route: route, Query: req.URL.Query(), Header: req.Header.Clone(), Body: body})
		status := b.failures[route]
		gate := b.gates[route]
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-req.Context().Done():
				return
			}
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}

		req.Body = newBody(body)
		out := h(w, req)
		if out == nil {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()

	b.handle(r, RouteLogin, func(w http.ResponseWriter, req *http.Request) any {
		_ = req.ParseForm()
		phone := req.PostForm.Get("username")
		b.mu.Lock()
		pw, ok := b.Passwords[phone]
		res := b.LoginResults[phone]
		b.mu.Unlock()
		if !ok || pw != req.PostForm.Get("password") {
			http.Error(w, `{"detail":"Incorrect phone or password"}`, http.StatusUnauthorized)
			return nil
		}
		return res
	})
	b.handle(r, RouteRegister, func(w http.ResponseWriter, req *http.Request) any {
		var reg models.Registration
		if err := json.NewDecoder(req.Body).Decode(&reg); err != nil {
			http.Error(w, "invalid", http.StatusUnprocessableEntity)
			return nil
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.Passwords[reg.Phone]; exists {
			http.Error(w, `{"detail":"Phone number already registered"}`, http.StatusBadRequest)
			return nil
		}
		b.Passwords[reg.Phone] = reg.Password
		return map[string]string{"msg": "User created successfully", "phone": reg.Phone}
	})
	b.handle(r, RouteProfile, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		p, ok := b.Profiles[chi.URLParam(req, "phone")]
		b.mu.Unlock()
		if !ok {
			http.Error(w, `{"detail":"Profile not found"}`, http.StatusNotFound)
			return nil
		}
		return p
	})
	b.handle(r, RouteSaveProfile, func(w http.ResponseWriter, req *http.Request) any {
		var p models.FarmerProfile
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			http.Error(w, "invalid", http.StatusUnprocessableEntity)
			return nil
		}
		b.mu.Lock()
		b.Profiles[p.Phone] = p
		b.mu.Unlock()
		return map[string]string{"status": "success", "message": "Profile saved"}
	})
	b.handle(r, RouteSowing, func(w http.ResponseWriter, req *http.Request) any {
		crop := req.URL.Query().Get("crop")
		return models.SowingRecommendation{
			Crop: crop, Location: req.URL.Query().Get("location"),
			Recommendation: "Optimal months: October, November", Warning: "Avoid: Summer",
			Details: "Based on regional climate patterns",
		}
	})
	b.handle(r, RouteFertilizer, func(w http.ResponseWriter, req *http.Request) any {
		return models.FertilizerDosage{
			Crop: req.URL.Query().Get("crop"), Stage: req.URL.Query().Get("stage"),
			Recommendation: []string{"Urea (46% N): 217.4 kg", "DAP (18% N, 46% P): 81.5 kg"},
			Note:           "Apply in split doses for better efficiency",
		}
	})
	b.handle(r, RouteHistory, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		defer b.mu.Unlock()
		h := b.Advisories[chi.URLParam(req, "phone")]
		if h == nil {
			h = []models.Advisory{}
		}
		return append([]models.Advisory(nil), h...)
	})
	b.handle(r, RouteAdvisoryStatus, func(w http.ResponseWriter, req *http.Request) any {
		phone, id := chi.URLParam(req, "phone"), chi.URLParam(req, "id")
		status := models.AdvisoryStatus(req.URL.Query().Get("status"))
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, a := range b.Advisories[phone] {
			if a.ID == id {
				b.Advisories[phone][i].Status = status
				return map[string]string{"status": "success", "new_status": string(status)}
			}
		}
		return map[string]string{"status": "error", "message": "Advisory not found"}
	})
	b.handle(r, RoutePriority, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.Priority
	})
	b.handle(r, RouteCropPatterns, func(w http.ResponseWriter, req *http.Request) any {
		return b.Patterns
	})
	b.handle(r, RouteFarmers, func(w http.ResponseWriter, req *http.Request) any {
		return b.Locations
	})
	b.handle(r, RoutePendingRecs, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []models.PendingRecommendation{}
		for _, p := range b.Pending {
			if p.Status == "pending" {
				out = append(out, p)
			}
		}
		return out
	})
	b.handle(r, RouteValidateRec, func(w http.ResponseWriter, req *http.Request) any {
		id := chi.URLParam(req, "id")
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, p := range b.Pending {
			if p.ID == id {
				b.Pending[i].Recommendation = req.URL.Query().Get("new_text")
				b.Pending[i].Status = "validated"
				return map[string]any{"status": "success", "rec": b.Pending[i]}
			}
		}
		return map[string]string{"status": "error"}
	})
	b.handle(r, RouteSendAdvisory, func(w http.ResponseWriter, req *http.Request) any {
		var bc models.Broadcast
		if err := json.NewDecoder(req.Body).Decode(&bc); err != nil {
			http.Error(w, "invalid", http.StatusUnprocessableEntity)
			return nil
		}
		return models.BroadcastResult{Sent: len(bc.Phones)}
	})
	b.handle(r, RoutePrices, func(w http.ResponseWriter, req *http.Request) any {
		crop := "Wheat"
		if req.URL.Query().Get("lang") == "hi" {
			crop = "गेहूँ"
		}
		return []models.MarketPrice{
			{Crop: crop, Price: 2125, Unit: "INR/Qt", Trend: "up"},
			{Crop: "Maize", Price: 1950, Unit: "INR/Qt", Trend: "down"},
		}
	})
	b.handle(r, RouteNews, func(w http.ResponseWriter, req *http.Request) any {
		return []models.NewsItem{{Title: "MSP for Wheat hiked by ₹150/quintal", Source: "DD Kisan"}}
	})
	b.handle(r, RouteSubsidy, func(w http.ResponseWriter, req *http.Request) any {
		return []models.SubsidyScheme{{Name: "PM-KISAN", Benefit: "₹6,000 / year", Eligibility: "Pass", Link: "https://pmkisan.gov.in/"}}
	})
	b.handle(r, RouteForecast, func(w http.ResponseWriter, req *http.Request) any {
		return map[string]any{
			"location": req.URL.Query().Get("location"),
			"title":    "Live forecast",
			"current":  map[string]string{"temp": "31", "humidity": "45", "condition": "Sunny"},
		}
	})
	b.handle(r, RouteIrrigation, func(w http.ResponseWriter, req *http.Request) any {
		return models.IrrigationSchedule{Crop: req.URL.Query().Get("crop"), Schedule: "Irrigate once (evening)", WeatherInput: "31.0°C, 45.0% RH"}
	})
	b.handle(r, RouteDiagnose, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.Diagnosis
	})
	b.handle(r, RouteChat, func(w http.ResponseWriter, req *http.Request) any {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.Reply
	})
	return r
}
