package plugin

// Threshold modes accepted by Args.ThresholdMode.
const (
	ThresholdModeAbsolute   = "absolute"
	ThresholdModePercentage = "percentage"
)

// Results holds the totals of one or more JUnit logs.
type Results struct {
	Total      int
	Assertions int
	Failures   int
	Errors     int
	Warnings   int
	Risky      int
	Skipped    int
	Time       float64
}

// Add accumulates other into r.
func (r *Results) Add(other Results) {
	r.Total += other.Total
	r.Assertions += other.Assertions
	r.Failures += other.Failures
	r.Errors += other.Errors
	r.Warnings += other.Warnings
	r.Risky += other.Risky
	r.Skipped += other.Skipped
	r.Time += other.Time
}
