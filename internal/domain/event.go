package domain

import "time"

// Phase is one step of the per-dataset run.
type Phase string

const (
	PhaseDownload Phase = "download"
	PhaseRain     Phase = "rain"
	PhaseFog      Phase = "fog"
)

// Weather selectors accepted on the command line.
const (
	WeatherRain = "rain"
	WeatherFog  = "fog"
)

// RunEvent summarizes one completed phase for downstream consumers.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	Dataset    string    `json:"dataset"`
	Phase      Phase     `json:"phase"`
	Sequences  []string  `json:"sequences"`
	OutputDir  string    `json:"output_dir"`
	Archives   int       `json:"archives,omitempty"`
	Reused     int       `json:"reused,omitempty"`
	Mismatches int       `json:"checksum_mismatches,omitempty"`
	Generated  int       `json:"generated,omitempty"`
	Skipped    int       `json:"skipped,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunStatus is a point-in-time view of a run.
type RunStatus struct {
	RunID     string   `json:"run_id"`
	Dataset   string   `json:"dataset,omitempty"`
	Phase     Phase    `json:"phase,omitempty"`
	Completed []string `json:"completed"`
	Done      bool     `json:"done"`
	Error     string   `json:"error,omitempty"`
}
