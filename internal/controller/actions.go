package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

// Broadcast defaults used by the officer console.
var (
	DemoBroadcastPhones = []string{"9876543210"}
	BroadcastValidUntil = "2026-12-31"
)

// ProfileForm is what the farmer fills in on the setup prompt.
type ProfileForm struct {
	Location   string  `json:"location"`
	CropType   string  `json:"crop_type"`
	LandSize   float64 `json:"land_size"`
	SowingDate string  `json:"sowing_date"`
	SoilType   string  `json:"soil_type"`
}

// SaveProfile stores the farm profile for the session's phone and reloads
// the dashboard.
func (c *Controller) SaveProfile(ctx context.Context, form ProfileForm) error {
	a, err := c.requireSession()
	if err != nil {
		return err
	}
	p := models.FarmerProfile{
		Phone:       a.session.Phone,
		Name:        a.session.Name,
		Location:    form.Location,
		CropType:    form.CropType,
		LandSize:    form.LandSize,
		SowingDate:  form.SowingDate,
		SoilType:    form.SoilType,
		GrowthStage: growthStageSave,
	}
	if err := c.backend(a).SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	c.log.Info("profile saved", zap.String("phone", p.Phone))
	return c.RefreshActive()
}

// UpdateAdvisoryStatus records what the farmer did with advisory id and
// reloads the advisory history.
func (c *Controller) UpdateAdvisoryStatus(ctx context.Context, id string, status models.AdvisoryStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid advisory status %q", status)
	}
	a, err := c.requireSession()
	if err != nil {
		return err
	}
	if err := c.backend(a).UpdateAdvisoryStatus(ctx, a.session.Phone, id, status); err != nil {
		return fmt.Errorf("update advisory %s: %w", id, err)
	}
	c.dispatch(a, c.loadAdvisoryHistory)
	return nil
}

// ValidateRecommendation approves a pending AI recommendation, optionally
// with refined text, and reloads the review queue.
func (c *Controller) ValidateRecommendation(ctx context.Context, id, text string) error {
	a, err := c.requireSession()
	if err != nil {
		return err
	}
	if err := c.backend(a).ValidateRecommendation(ctx, id, text); err != nil {
		return fmt.Errorf("validate recommendation %s: %w", id, err)
	}
	c.dispatch(a, c.loadReviewQueue)
	return nil
}

// SendAdvisory broadcasts an advisory to the demo target list.
func (c *Controller) SendAdvisory(ctx context.Context, kind, message string) (*models.BroadcastResult, error) {
	a, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("advisory message is empty")
	}
	res, err := c.backend(a).SendAdvisory(ctx, models.Broadcast{
		Phones: DemoBroadcastPhones,
		Advisory: models.OutgoingAdvisory{
			Type:       kind,
			Message:    message,
			ValidUntil: BroadcastValidUntil,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("send advisory: %w", err)
	}
	c.log.Info("advisory sent", zap.Int("sent", res.Sent))
	return res, nil
}

// Diagnose shows a loading indicator, submits the image and replaces the
// indicator with the result. On failure the indicator is cleared and no
// error text is painted.
func (c *Controller) Diagnose(ctx context.Context, img api.Image) (*models.Diagnosis, error) {
	a, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	c.paintNow(a, view.RegionDiagnosis, view.Loading())

	d, err := c.backend(a).DiagnoseLeaf(ctx, img, c.Language())
	if err != nil {
		c.clearNow(a, view.RegionDiagnosis)
		c.log.Warn("diagnosis failed", zap.String("image", img.Name), zap.Error(err))
		return nil, fmt.Errorf("diagnose: %w", err)
	}
	if !c.paintNow(a, view.RegionDiagnosis, view.DiagnosisResult(*d)) {
		return nil, ErrUnauthenticated
	}
	return d, nil
}

// SendChat appends text to the transcript with a typing placeholder, asks
// the assistant and replaces the placeholder with the answer. Blank text
// is ignored. A reply that names a module the user can see activates it.
func (c *Controller) SendChat(ctx context.Context, text string) (*models.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	a, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	pending := uuid.NewString()
	c.mu.Lock()
	if !c.liveLocked(a) {
		c.mu.Unlock()
		return nil, ErrUnauthenticated
	}
	c.transcript = c.transcript.AppendUser(uuid.NewString(), text).AppendPending(pending)
	c.painter.Paint(view.RegionChat, c.transcript.Panel())
	lang := c.lang
	c.mu.Unlock()

	reply, err := c.backend(a).Ask(ctx, text, lang)
	answer := view.ErrorReply
	if err != nil {
		c.log.Warn("chat failed", zap.Error(err))
	} else {
		answer = reply.Response
	}

	c.mu.Lock()
	if !c.liveLocked(a) {
		c.mu.Unlock()
		c.log.Debug("discarding chat reply after logout")
		return nil, ErrUnauthenticated
	}
	c.transcript = c.transcript.Resolve(pending, answer)
	c.painter.Paint(view.RegionChat, c.transcript.Panel())
	var target models.Module
	if err == nil {
		if m, ok := reply.NavigationTarget(); ok && c.canOpenLocked(m) {
			target = m
		}
	}
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	if target != "" {
		if err := c.ActivateModule(string(target)); err != nil {
			return reply, err
		}
	}
	return reply, nil
}

// Transcript returns the chat history.
func (c *Controller) Transcript() view.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Transcript{Messages: c.transcript.Panel().Messages}
}

// canOpenLocked reports whether m is visible to the session's role.
// c.mu must be held.
func (c *Controller) canOpenLocked(m models.Module) bool {
	if c.session == nil {
		return false
	}
	for _, it := range view.Navigation(c.session.Role, c.active) {
		if it.Module == m {
			return !it.Hidden
		}
	}
	return false
}

// paintNow paints p unless the session a belongs to has logged out. It
// reports whether it painted.
func (c *Controller) paintNow(a *activation, r view.Region, p view.Panel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked(a) {
		c.log.Debug("discarding paint after logout", zap.String("region", string(r)))
		return false
	}
	c.painter.Paint(r, p)
	return true
}

func (c *Controller) clearNow(a *activation, r view.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liveLocked(a) {
		c.painter.Clear(r)
	}
}
