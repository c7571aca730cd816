package ui

// View is everything the page needs to draw one state.
type View struct {
	State       string `json:"state"`
	Message     string `json:"message"`
	Tone        Tone   `json:"tone"`
	UploadLabel string `json:"upload_label,omitempty"`

	ShowUpload      bool `json:"show_upload"`
	ShowSubmit      bool `json:"show_submit"`
	ShowReportInput bool `json:"show_report_input"`
	ShowProgress    bool `json:"show_progress"`

	SelectedFile string `json:"selected_file,omitempty"`
}

// Render maps a state to its view. It is the only place that decides which
// controls are live.
func Render(s State) View {
	d := s.Status()
	v := View{
		State:   s.Name(),
		Message: d.Message,
		Tone:    d.Tone,
	}

	switch st := s.(type) {
	case Idle:
		v.ShowUpload = true
		v.UploadLabel = "Upload File"
	case FileSelected:
		v.ShowUpload = true
		v.ShowSubmit = true
		v.UploadLabel = "Replace File"
		v.SelectedFile = st.File.Name
	case Processing:
		v.ShowProgress = !st.Settled
		v.SelectedFile = st.File.Name
	case ReportPrompt:
		v.ShowReportInput = true
	case GeneratingReport:
		v.ShowProgress = !st.Settled
	}

	return v
}
