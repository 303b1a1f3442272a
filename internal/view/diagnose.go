package view

import (
	"fmt"
	"math"

	"github.com/krishichetan/kchetan/internal/models"
)

// ConfidencePercent converts a [0,1] confidence to a whole percentage.
func ConfidencePercent(c float64) int {
	return int(math.Round(c * 100))
}

// DiagnosisResult renders the classifier output.
func DiagnosisResult(d models.Diagnosis) Panel {
	tone := ToneWarn
	if d.Confidence < 0.5 {
		tone = ToneNeutral
	}
	return Panel{Kind: KindCards, Cards: []Card{{
		Icon:   "⚠️",
		Title:  d.Name,
		Value:  fmt.Sprintf("Confidence: %d%%", ConfidencePercent(d.Confidence)),
		Detail: d.Remedy,
		Badge:  d.Model,
		Tone:   tone,
	}}}
}
