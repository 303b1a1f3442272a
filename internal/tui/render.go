package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

// section is a titled region of a module.
type section struct {
	title  string
	region view.Region
}

var farmerDashboard = []section{
	{"Profile", view.RegionProfileSetup},
	{"Overview", view.RegionStats},
	{"Weather", view.RegionWeather},
	{"Sowing", view.RegionSowing},
	{"Fertilizer", view.RegionFertilizer},
	{"Climate", view.RegionClimate},
	{"Irrigation", view.RegionIrrigation},
	{"Advisories", view.RegionAdvisories},
}

var officerConsole = []section{
	{"Adoption", view.RegionMetrics},
	{"Priority farmers", view.RegionPriority},
	{"AI review queue", view.RegionReviewQueue},
	{"Crop distribution", view.RegionCropChart},
	{"Adoption trend", view.RegionTrendChart},
	{"Farmer map", view.RegionMap},
}

var marketSections = []section{
	{"Mandi prices", view.RegionPrices},
	{"Agri news", view.RegionNews},
	{"Subsidies", view.RegionSubsidies},
}

var diagnoseSections = []section{
	{"Diagnosis", view.RegionDiagnosis},
}

// sectionsFor lists the regions drawn for module m.
func sectionsFor(m models.Module, role models.Role) []section {
	switch m {
	case models.ModuleDashboard:
		if role == models.RoleOfficer {
			return officerConsole
		}
		return farmerDashboard
	case models.ModuleOfficer:
		return officerConsole
	case models.ModuleMarket:
		return marketSections
	case models.ModuleDiagnose:
		return diagnoseSections
	}
	return nil
}

func renderPanel(p view.Panel, width int) string {
	switch p.Kind {
	case view.KindPlaceholder, view.KindLoading:
		return dimStyle.Render("  " + p.Placeholder)
	case view.KindCards:
		return renderCards(p.Cards)
	case view.KindList:
		var b strings.Builder
		for _, it := range p.Items {
			b.WriteString("  • " + it + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	case view.KindTable:
		return renderTable(p.Table)
	case view.KindChart:
		return renderChart(p.Chart, width)
	case view.KindMap:
		return renderMap(p.Map)
	case view.KindChat:
		return renderChat(p.Messages)
	case view.KindForm:
		var b strings.Builder
		b.WriteString(dimStyle.Render("  "+p.Placeholder) + "\n")
		for _, f := range p.Fields {
			b.WriteString(fmt.Sprintf("  - %s (%s)\n", f.Label, f.Name))
		}
		b.WriteString(dimStyle.Render("  Submit it from the web view: kchetan serve"))
		return b.String()
	}
	return ""
}

func renderCards(cards []view.Card) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		head := strings.TrimSpace(c.Icon + " " + c.Title)
		line := "  " + head
		if c.Value != "" {
			line += ": " + toned(c.Tone, c.Value)
		}
		if c.Badge != "" {
			line += "  " + toned(c.Tone, "["+c.Badge+"]")
		}
		b.WriteString(line)
		for _, d := range strings.Split(c.Detail, "\n") {
			if d != "" {
				b.WriteString("\n    " + dimStyle.Render(d))
			}
		}
		if len(c.Actions) > 0 {
			labels := make([]string, 0, len(c.Actions))
			for _, a := range c.Actions {
				labels = append(labels, a.Label)
			}
			b.WriteString("\n    " + helpStyle.Render("actions: "+strings.Join(labels, " / ")))
		}
	}
	return b.String()
}

func renderTable(t *view.Table) string {
	if t == nil {
		return ""
	}
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len([]rune(c))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}
	line := func(cells []string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			if i < len(widths) {
				out[i] = pad(c, widths[i])
			}
		}
		return "  " + strings.Join(out, "  ")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render(line(t.Columns)))
	for _, row := range t.Rows {
		b.WriteString("\n" + line(row))
	}
	return b.String()
}

func renderChart(c *view.Chart, width int) string {
	if c == nil {
		return ""
	}
	maxV, labelW := 0.0, 0
	for i, v := range c.Values {
		maxV = math.Max(maxV, v)
		if i < len(c.Labels) && len([]rune(c.Labels[i])) > labelW {
			labelW = len([]rune(c.Labels[i]))
		}
	}
	barW := width - labelW - 16
	if barW < 10 {
		barW = 10
	}
	var b strings.Builder
	for i, v := range c.Values {
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		n := 0
		if maxV > 0 {
			n = int(math.Round(v / maxV * float64(barW)))
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  %s %s %g", pad(label, labelW), strings.Repeat("█", n), v))
	}
	return b.String()
}

func renderMap(m *view.MapView) string {
	if m == nil || len(m.Markers) == 0 {
		return dimStyle.Render("  no located farmers")
	}
	var b strings.Builder
	for i, mk := range m.Markers {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  %s %s (%s) risk %g at %.4f, %.4f",
			markerStyle(mk.Color).Render("●"), mk.Name, mk.Crop, mk.Risk, mk.Lat, mk.Lng))
	}
	return b.String()
}

func renderChat(msgs []view.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		who := botStyle.Render(" bot ")
		if m.Sender == view.SenderUser {
			who = userStyle.Render(" you ")
		}
		text := m.Text
		if m.Pending {
			text = dimStyle.Render(text)
		}
		b.WriteString("  " + who + " " + text)
	}
	return b.String()
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
