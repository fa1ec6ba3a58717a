package models

import "time"

// StageResult records how long a stage took and whether it passed.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// BuildReport summarizes one orchestrated run.
type BuildReport struct {
	RunID      string        `json:"runId"`
	LogPath    string        `json:"logPath"`
	StagingDir string        `json:"stagingDir"`
	Outcome    Outcome       `json:"outcome"`
	Stages     []StageResult `json:"stages"`

	// BundleDir is the materialized bundle under <root>/dist
	BundleDir string `json:"bundleDir,omitempty"`

	// Renamed is true when the bundle was moved to its localized name
	Renamed bool `json:"renamed"`

	// Warnings collects non-fatal problems, such as best-effort installs.
	Warnings []string `json:"warnings,omitempty"`
}

// LastStage returns the last stage that ran.
func (r *BuildReport) LastStage() Stage {
	if len(r.Stages) == 0 {
		return StageInit
	}
	return r.Stages[len(r.Stages)-1].Stage
}

// Ran reports whether stage was entered during the run.
func (r *BuildReport) Ran(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return true
		}
	}
	return false
}
