package merger

import "go.uber.org/zap"

// templateScanWindow bounds how many leading rows of the base output sheet
// are scanned for template (formula-bearing) rows.
const templateScanWindow = 50

// Options configures engine behavior.
type Options struct {
	// Logger receives engine diagnostics. If nil, logging is disabled.
	Logger *zap.SugaredLogger
	// Progress, if set, is invoked synchronously after each discrete step
	// (per-dataset read, per-edge join, per-sheet write).
	Progress ProgressFunc
	// CrossJoinLimit caps the row count a chain-mode cross-join fallback may
	// produce. 0 means unlimited, matching the historical behavior.
	CrossJoinLimit int
}

// DefaultOptions returns options with logging and progress disabled.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop().Sugar()
}

func (o Options) emit(ev Event) {
	if o.Progress != nil {
		o.Progress(ev)
	}
}
