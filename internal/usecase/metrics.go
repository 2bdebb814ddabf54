package usecase

// MetricsRecorder receives usage counters from the services.
// The prometheus implementation lives in internal/platform/metrics.
type MetricsRecorder interface {
	CatalogLoaded(view string, products, rejected int)
	SearchPerformed(mode string, results int)
	MatchesGenerated(count int)
	MatchDeleted()
	InventoryChanged(action string)
}

type noopRecorder struct{}

func (noopRecorder) CatalogLoaded(string, int, int) {}
func (noopRecorder) SearchPerformed(string, int)    {}
func (noopRecorder) MatchesGenerated(int)           {}
func (noopRecorder) MatchDeleted()                  {}
func (noopRecorder) InventoryChanged(string)        {}

func recorderOrNoop(r MetricsRecorder) MetricsRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
