package lbvh

import "time"

type StageStat struct {
	// Stage name.
	Name string

	// Time spent in the stage. Without Options.SyncStages this only covers
	// kernel submission.
	Time time.Duration
}

type FrameStats struct {
	// Frame number, starting at 1.
	Frame int

	// Individual stage stats in pipeline order.
	Stages []StageStat

	// Total build time for the frame including the final device sync.
	BuildTime time.Duration
}
