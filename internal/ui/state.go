// Package ui holds the operator interaction state machine.
//
// The machine owns exactly one State at a time. Every transition runs on the
// dispatcher goroutine supplied in Options; long work runs through task.Run
// and timed transitions through task.Clock, both marshaled back onto that
// goroutine. Render turns the active state into a View for display.
package ui

import (
	"math"
	"strconv"

	"github.com/JonMunkholm/casemaster/internal/core"
)

// Tone styles the displayed message.
type Tone string

const (
	ToneNeutral    Tone = "neutral"
	ToneProcessing Tone = "processing"
	ToneSuccess    Tone = "success"
	ToneError      Tone = "error"
)

// Messages shown by the machine.
const (
	MsgIdle             = "Click 'Upload File' to select an Excel document."
	MsgSelectFirst      = "Please select an Excel file first."
	MsgReportPrompt     = "Enter the file name to generate a report."
	MsgReportNameNeeded = "Please enter a file name for the report."
	MsgReportSaved      = "Download Successful! Report saved to %s folder."
)

// State is the active interaction state. The concrete types are Idle,
// FileSelected, Processing, ReportPrompt and GeneratingReport.
type State interface {
	Name() string
	Status() Display
	isState()
}

// Display is the message carried by every state.
type Display struct {
	Message string
	Tone    Tone
}

// Idle waits for the operator to pick a file.
type Idle struct {
	Display
}

// FileSelected holds a staged file ready to submit.
type FileSelected struct {
	Display
	File core.StagedFile
}

// Processing runs the import of File. Settled is set once the import has
// finished and the result message is on display.
type Processing struct {
	Display
	File    core.StagedFile
	Settled bool
}

// ReportPrompt waits for the operator to name a file to report on.
type ReportPrompt struct {
	Display
}

// GeneratingReport runs report generation for FileName. Settled is set once
// the outcome message is on display.
type GeneratingReport struct {
	Display
	FileName string
	Settled  bool
}

func (Idle) Name() string { return "idle" }
func (FileSelected) Name() string { return "file_selected" }
func (Processing) Name() string { return "processing" }
func (ReportPrompt) Name() string { return "report_prompt" }
func (GeneratingReport) Name() string { return "generating_report" }

func (s Idle) Status() Display { return s.Display }
func (s FileSelected) Status() Display { return s.Display }
func (s Processing) Status() Display { return s.Display }
func (s ReportPrompt) Status() Display { return s.Display }
func (s GeneratingReport) Status() Display { return s.Display }

func (Idle) isState() {}
func (FileSelected) isState() {}
func (Processing) isState() {}
func (ReportPrompt) isState() {}
func (GeneratingReport) isState() {}

func idleState() Idle {
	return Idle{Display{Message: MsgIdle, Tone: ToneNeutral}}
}

func reportPromptState() ReportPrompt {
	return ReportPrompt{Display{Message: MsgReportPrompt, Tone: ToneNeutral}}
}

func fileSelectedState(f core.StagedFile) FileSelected {
	msg := "Selected file: " + f.Name + " (" + formatMB(f.SizeMB()) + " MB)"
	return FileSelected{Display: Display{Message: msg, Tone: ToneNeutral}, File: f}
}

// formatMB renders mb with at most two decimals and no trailing zeros.
func formatMB(mb float64) string {
	return strconv.FormatFloat(math.Round(mb*100)/100, 'f', -1, 64)
}
