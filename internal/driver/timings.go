package driver

import (
	"encoding/json"
	"fmt"

	"quibble/internal/diag"
	"quibble/internal/observ"
	"quibble/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic attaches the report as an obs-timings diagnostic
// with the JSON payload in its note. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, file *source.File, report observ.Report) {
	if bag == nil || file == nil {
		return
	}
	payload := timingPayload{
		Kind:    "file",
		Path:    file.Path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	span := source.Span{File: file.ID}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, span,
		fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)).
		WithNote(span, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
