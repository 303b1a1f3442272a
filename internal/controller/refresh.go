package controller

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

// Fixed inputs the front-end has always sent.
const (
	forecastDays    = 1
	demoLandSize    = 2.5
	demoCategory    = "General"
	growthStageSave = "Vegetative"
)

// refreshFor returns the refresh bound to m, or nil when m has none.
func (c *Controller) refreshFor(m models.Module, role models.Role) func(*activation) {
	switch m {
	case models.ModuleDashboard:
		if role == models.RoleOfficer {
			return c.refreshOfficer
		}
		return c.refreshFarmerDashboard
	case models.ModuleOfficer:
		return c.refreshOfficer
	case models.ModuleMarket:
		return c.refreshMarket
	}
	return nil
}

// refreshFarmerDashboard loads the profile-driven widgets and, in
// parallel, the weather widget.
func (c *Controller) refreshFarmerDashboard(a *activation) {
	var g errgroup.Group
	g.Go(func() error {
		c.loadProfileWidgets(a)
		return nil
	})
	g.Go(func() error {
		c.loadWeather(a)
		return nil
	})
	_ = g.Wait()
}

func (c *Controller) loadProfileWidgets(a *activation) {
	profile, err := c.backend(a).Profile(a.ctx, a.session.Phone)
	var se *api.StatusError
	switch {
	case errors.Is(err, api.ErrNotFound), errors.As(err, &se):
		c.paint(a, view.RegionProfileSetup, view.ProfileSetup())
		return
	case err != nil:
		c.fail(a, view.RegionProfileSetup, err)
		return
	}

	c.clear(a, view.RegionProfileSetup)
	c.paint(a, view.RegionStats, view.Stats(*profile))
	c.paint(a, view.RegionClimate, view.Climate())

	var g errgroup.Group
	g.Go(func() error {
		c.loadSowing(a, *profile)
		return nil
	})
	g.Go(func() error {
		c.loadFertilizer(a, *profile)
		return nil
	})
	g.Go(func() error {
		c.loadIrrigation(a, *profile)
		return nil
	})
	g.Go(func() error {
		c.loadAdvisoryHistory(a)
		return nil
	})
	_ = g.Wait()
}

func (c *Controller) loadSowing(a *activation, p models.FarmerProfile) {
	rec, err := c.backend(a).SowingRecommendation(a.ctx, p.CropType, p.Location, a.lang)
	if err != nil {
		c.fail(a, view.RegionSowing, err)
		return
	}
	c.paint(a, view.RegionSowing, view.Sowing(*rec))
}

func (c *Controller) loadFertilizer(a *activation, p models.FarmerProfile) {
	d, err := c.backend(a).FertilizerDosage(a.ctx, p.CropType, p.LandSize, p.GrowthStage, a.lang)
	if err != nil {
		c.fail(a, view.RegionFertilizer, err)
		return
	}
	c.paint(a, view.RegionFertilizer, view.Fertilizer(*d))
}

// loadIrrigation reads the current weather and submits it with the crop
// and soil. The weather read is always in English so the scheduler gets
// conditions it understands.
func (c *Controller) loadIrrigation(a *activation, p models.FarmerProfile) {
	b := c.backend(a)
	f, err := b.Forecast(a.ctx, c.location, forecastDays, models.English)
	if err != nil {
		c.fail(a, view.RegionIrrigation, err)
		return
	}
	if f.Current == nil {
		c.fail(a, view.RegionIrrigation, errors.New("forecast has no current conditions"))
		return
	}
	s, err := b.IrrigationSchedule(a.ctx, p.CropType, p.SoilType, a.lang, *f.Current)
	if err != nil {
		c.fail(a, view.RegionIrrigation, err)
		return
	}
	c.paint(a, view.RegionIrrigation, view.Irrigation(*s))
}

func (c *Controller) loadWeather(a *activation) {
	f, err := c.backend(a).Forecast(a.ctx, c.location, forecastDays, a.lang)
	if err != nil {
		c.fail(a, view.RegionWeather, err)
		return
	}
	c.paint(a, view.RegionWeather, view.Weather(*f))
}

// loadAdvisoryHistory shows the empty-state placeholder when the history
// cannot be loaded.
func (c *Controller) loadAdvisoryHistory(a *activation) {
	advs, err := c.backend(a).AdvisoryHistory(a.ctx, a.session.Phone)
	if err != nil {
		c.fail(a, view.RegionAdvisories, err)
		advs = nil
	}
	c.paint(a, view.RegionAdvisories, view.AdvisoryHistory(advs))
}

// refreshOfficer fills the officer regions. Each fetch paints its own
// region and a failure leaves the others untouched.
func (c *Controller) refreshOfficer(a *activation) {
	c.paint(a, view.RegionTrendChart, view.AdoptionTrend())

	var g errgroup.Group
	for _, load := range []func(*activation){
		c.loadReviewQueue,
		c.loadPriority,
		c.loadCropChart,
		c.loadFarmerMap,
	} {
		g.Go(func() error {
			load(a)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Controller) loadReviewQueue(a *activation) {
	recs, err := c.backend(a).PendingRecommendations(a.ctx)
	if err != nil {
		c.fail(a, view.RegionReviewQueue, err)
		recs = nil
	}
	c.paint(a, view.RegionReviewQueue, view.ReviewQueue(recs))
}

func (c *Controller) loadPriority(a *activation) {
	pl, err := c.backend(a).PriorityList(a.ctx)
	if err != nil {
		c.fail(a, view.RegionPriority, err)
		c.paint(a, view.RegionPriority, view.Priority(nil))
		return
	}
	c.paint(a, view.RegionPriority, view.Priority(pl.Farmers))
	c.paint(a, view.RegionMetrics, view.Metrics(pl.Metrics))
}

func (c *Controller) loadCropChart(a *activation) {
	p, err := c.backend(a).CropPatterns(a.ctx)
	if err != nil {
		c.fail(a, view.RegionCropChart, err)
		return
	}
	c.paint(a, view.RegionCropChart, view.CropChart(p))
}

func (c *Controller) loadFarmerMap(a *activation) {
	locs, err := c.backend(a).Farmers(a.ctx)
	if err != nil {
		c.fail(a, view.RegionMap, err)
		return
	}
	c.paint(a, view.RegionMap, view.FarmerMap(locs))
}

// refreshMarket loads prices, news and subsidies in order. A failure
// stops the sequence.
func (c *Controller) refreshMarket(a *activation) {
	b := c.backend(a)
	prices, err := b.MarketPrices(a.ctx, a.lang)
	if err != nil {
		c.fail(a, view.RegionPrices, err)
		return
	}
	c.paint(a, view.RegionPrices, view.Prices(prices))

	news, err := b.News(a.ctx, a.lang)
	if err != nil {
		c.fail(a, view.RegionNews, err)
		return
	}
	c.paint(a, view.RegionNews, view.News(news))

	schemes, err := b.CheckSubsidy(a.ctx, models.SubsidyQuery{LandSize: demoLandSize, Category: demoCategory}, a.lang)
	if err != nil {
		c.fail(a, view.RegionSubsidies, err)
		return
	}
	c.paint(a, view.RegionSubsidies, view.Subsidies(schemes))
}
