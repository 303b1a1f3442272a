package view

import (
	"strings"

	"github.com/krishichetan/kchetan/internal/models"
)

// Prices renders mandi quotes with a trend arrow.
func Prices(prices []models.MarketPrice) Panel {
	cards := make([]Card, 0, len(prices))
	for _, p := range prices {
		icon, tone := "📉", ToneAlert
		if strings.EqualFold(p.Trend, "up") {
			icon, tone = "📈", ToneGood
		}
		unit := "unit"
		if p.Unit != "" {
			unit = p.Unit
		}
		cards = append(cards, Card{
			Icon:   icon,
			Title:  p.Crop,
			Value:  "₹" + formatNumber(p.Price),
			Detail: "per " + unit,
			Badge:  strings.ToUpper(p.Trend),
			Tone:   tone,
		})
	}
	return Panel{Kind: KindCards, Cards: cards}
}

// News renders headlines as a list.
func News(items []models.NewsItem) Panel {
	lines := make([]string, 0, len(items))
	for _, n := range items {
		if n.Source == "" {
			lines = append(lines, n.Title)
			continue
		}
		lines = append(lines, n.Source+": "+n.Title)
	}
	return Panel{Kind: KindList, Items: lines}
}

// Subsidies renders the schemes the demo profile qualifies for.
func Subsidies(schemes []models.SubsidyScheme) Panel {
	cards := make([]Card, 0, len(schemes))
	for _, s := range schemes {
		cards = append(cards, Card{
			Icon:   "🏛️",
			Title:  s.Name,
			Value:  s.Benefit,
			Detail: s.Eligibility,
			Link:   s.Link,
		})
	}
	return Panel{Kind: KindCards, Cards: cards}
}
