// internal/notifications/catalog.go
package notifications

// EventID names an occasion that can trigger a notification.
type EventID string

// Company event notifications catalog.
const (
	EventInspectionCreated   EventID = "inspectionCreated"
	EventInspectionStarted   EventID = "inspectionStarted"
	EventInspectionFinished  EventID = "inspectionFinished"
	EventReportAvailable     EventID = "reportAvailable"
	EventInspectionCancelled EventID = "inspectionCancelled"
)

// Chase-up reminder catalog.
const (
	EventFirstReminder  EventID = "firstReminder"
	EventSecondReminder EventID = "secondReminder"
)

// Catalog is a fixed, ordered set of event identifiers sharing one codec
// configuration surface. The two catalogs differ only in their event lists;
// the structural rules are identical.
type Catalog struct {
	Name   string
	Events []EventID
}

// CompanyCatalog covers the company-level event notifications.
var CompanyCatalog = Catalog{
	Name: "company",
	Events: []EventID{
		EventInspectionCreated,
		EventInspectionStarted,
		EventInspectionFinished,
		EventReportAvailable,
		EventInspectionCancelled,
	},
}

// ChaseUpCatalog covers the chase-up reminder rules.
var ChaseUpCatalog = Catalog{
	Name:   "chaseup",
	Events: []EventID{EventFirstReminder, EventSecondReminder},
}

// Contains reports whether id is part of the catalog.
func (c Catalog) Contains(id EventID) bool {
	for _, e := range c.Events {
		if e == id {
			return true
		}
	}
	return false
}
