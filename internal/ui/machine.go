package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/task"
)

// Default display delays.
const (
	DefaultSuccessDelay = 3 * time.Second
	DefaultFailureDelay = 5 * time.Second
)

// Importer persists an uploaded spreadsheet and describes the outcome.
type Importer interface {
	ProcessFile(ctx context.Context, file core.StagedFile) (string, error)
}

// ReportGenerator builds a report for a file name.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, fileName string) ([]byte, error)
}

// ReportWriter persists a generated report and returns where it went.
type ReportWriter func(fileName string, data []byte) (string, error)

// Options configures a Machine.
type Options struct {
	Importer    Importer
	Reports     ReportGenerator
	WriteReport ReportWriter

	// Dispatcher is the goroutine every transition runs on.
	Dispatcher task.Dispatcher
	// Clock schedules the timed transitions. Defaults to task.SystemClock.
	Clock task.Clock

	SuccessDelay time.Duration
	FailureDelay time.Duration

	// Discard is called with a staged file the machine no longer references.
	Discard func(core.StagedFile)

	// Context is passed to task work. Defaults to context.Background().
	Context context.Context
}

// Machine is the operator interaction controller.
//
// All methods except Subscribe must be called on the Options.Dispatcher
// goroutine.
type Machine struct {
	opts Options

	state   State
	epoch   uint64
	pending *task.Handle
	timer   task.Timer

	hub *hub
}

// NewMachine creates a Machine in the Idle state.
func NewMachine(opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = task.SystemClock{}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Discard == nil {
		opts.Discard = func(core.StagedFile) {}
	}
	if opts.WriteReport == nil {
		opts.WriteReport = func(string, []byte) (string, error) {
			return "", fmt.Errorf("no report writer configured")
		}
	}
	return &Machine{
		opts:  opts,
		state: idleState(),
		hub:   newHub(),
	}
}

// State returns the active state.
func (m *Machine) State() State { return m.state }

// View renders the active state.
func (m *Machine) View() View { return Render(m.state) }

// Pending returns the outstanding task, or nil when none is running.
func (m *Machine) Pending() *task.Handle { return m.pending }

// Subscribe returns a channel receiving the view after every transition.
// It is safe to call from any goroutine.
func (m *Machine) Subscribe() (<-chan View, func()) {
	return m.hub.subscribe()
}

// Close stops any pending timer and closes all subscriptions. Task
// callbacks and timers still queued on the dispatcher are dropped.
func (m *Machine) Close() {
	m.stopTimer()
	m.epoch++
	m.hub.closeAll()
}

// SelectFile stores f as the file to import. Valid in Idle and FileSelected;
// a previously selected file is replaced and discarded.
func (m *Machine) SelectFile(f core.StagedFile) View {
	switch st := m.state.(type) {
	case Idle:
	case FileSelected:
		if st.File.Path != f.Path {
			m.opts.Discard(st.File)
		}
	default:
		m.ignored("select_file")
		m.opts.Discard(f)
		return m.View()
	}

	slog.Info("file selected", "file_name", f.Name, "size", f.Size)
	return m.transition(fileSelectedState(f))
}

// CancelFileDialog handles a file dialog closed without a choice. A selected
// file stays selected; Idle is re-rendered.
func (m *Machine) CancelFileDialog() View {
	if _, ok := m.state.(Idle); ok {
		return m.transition(idleState())
	}
	return m.View()
}

// Submit starts importing the selected file.
func (m *Machine) Submit() View {
	st, ok := m.state.(FileSelected)
	if !ok {
		if _, idle := m.state.(Idle); idle {
			return m.transition(Idle{Display{Message: MsgSelectFirst, Tone: ToneError}})
		}
		m.ignored("submit")
		return m.View()
	}

	file := st.File
	view := m.transition(Processing{
		Display: Display{Message: "Processing " + file.Name + "...", Tone: ToneProcessing},
		File:    file,
	})

	epoch := m.epoch
	m.pending = task.Run(m.opts.Context, m.opts.Dispatcher, "import",
		func(ctx context.Context) (string, error) {
			return m.opts.Importer.ProcessFile(ctx, file)
		},
		func(result string) {
			m.opts.Discard(file)
			if !m.current(epoch) {
				return
			}
			m.pending = nil

			tone := ToneError
			if strings.HasPrefix(result, core.UploadSuccessPrefix) {
				tone = ToneSuccess
			}
			m.transition(Processing{Display: Display{Message: result, Tone: tone}, File: file, Settled: true})
			m.after(m.opts.SuccessDelay, func() { m.transition(reportPromptState()) })
		},
		func(err error) {
			m.opts.Discard(file)
			if !m.current(epoch) {
				return
			}
			m.pending = nil

			slog.Error("error processing Excel file", "file_name", file.Name, "error", core.UnknownError("import.process", err))
			m.transition(Processing{Display: Display{Message: "Error: " + err.Error(), Tone: ToneError}, File: file, Settled: true})
			m.after(m.opts.FailureDelay, func() { m.transition(idleState()) })
		},
	)
	return view
}

// RequestReport starts generating the report for name. Surrounding
// whitespace is trimmed; an empty name keeps the prompt with an error.
func (m *Machine) RequestReport(name string) View {
	if _, ok := m.state.(ReportPrompt); !ok {
		m.ignored("request_report")
		return m.View()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return m.transition(ReportPrompt{Display{Message: MsgReportNameNeeded, Tone: ToneError}})
	}

	view := m.transition(GeneratingReport{
		Display:  Display{Message: "Generating report for '" + name + "'...", Tone: ToneProcessing},
		FileName: name,
	})

	epoch := m.epoch
	m.pending = task.Run(m.opts.Context, m.opts.Dispatcher, "report",
		func(ctx context.Context) (string, error) {
			data, err := m.opts.Reports.GenerateReport(ctx, name)
			if err != nil {
				return "", err
			}
			return m.opts.WriteReport(name, data)
		},
		func(path string) {
			if !m.current(epoch) {
				return
			}
			m.pending = nil

			slog.Info("report saved", "file_name", name, "path", path)
			folder := filepath.Base(filepath.Dir(path))
			m.transition(GeneratingReport{
				Display:  Display{Message: fmt.Sprintf(MsgReportSaved, folder), Tone: ToneSuccess},
				FileName: name,
				Settled:  true,
			})
			m.after(m.opts.SuccessDelay, func() { m.transition(idleState()) })
		},
		func(err error) {
			if !m.current(epoch) {
				return
			}
			m.pending = nil

			slog.Error("error generating report", "file_name", name, "error", core.UnknownError("report.generate", err))
			m.transition(GeneratingReport{
				Display:  Display{Message: "Error generating report: " + err.Error(), Tone: ToneError},
				FileName: name,
				Settled:  true,
			})
			m.after(m.opts.FailureDelay, func() { m.transition(idleState()) })
		},
	)
	return view
}

// transition makes next the active state, invalidates outstanding callbacks
// and timers of the previous state, and publishes the new view.
func (m *Machine) transition(next State) View {
	m.stopTimer()
	m.epoch++
	prev := m.state
	m.state = next

	if prev.Name() != next.Name() {
		slog.Debug("state changed", "from", prev.Name(), "to", next.Name())
	}

	v := Render(next)
	m.hub.publish(v)
	return v
}

// current reports whether a callback captured at epoch still applies. A task
// callback holds the epoch of the state that launched it.
func (m *Machine) current(epoch uint64) bool {
	if m.epoch != epoch {
		slog.Debug("stale callback dropped", "epoch", epoch, "current", m.epoch)
		return false
	}
	return true
}

// after schedules fn on the dispatcher once d has elapsed. fn is dropped if
// another transition happens first.
func (m *Machine) after(d time.Duration, fn func()) {
	epoch := m.epoch
	m.timer = m.opts.Clock.AfterFunc(d, func() {
		m.opts.Dispatcher.Post(func() {
			if m.epoch != epoch {
				return
			}
			m.timer = nil
			fn()
		})
	})
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) ignored(action string) {
	slog.Debug("action ignored", "action", action, "state", m.state.Name())
}
