package mangawatch

import "time"

// ItemOutcome is the result of processing one item in a scheduler run.
type ItemOutcome string

// Item outcomes.
const (
	ItemChecked ItemOutcome = "checked"
	ItemUpdated ItemOutcome = "updated"
	ItemSkipped ItemOutcome = "skipped"
	ItemFailed  ItemOutcome = "failed"
)

// Metrics records operational counters.
type Metrics interface {
	ObserveScrape(strategy Strategy, err error)
	ObserveItem(outcome ItemOutcome)
	ObserveRun(d time.Duration)
	ObserveDelivery(err error)
}
