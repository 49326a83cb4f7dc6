// Package events defines the events emitted on the event bus while datasets
// are loaded and reports are served.
//
// Available event types:
//   - DatasetEvent: a survey dataset was loaded or failed to load
//   - ReportEvent: a summary report was built
//   - RequestEvent: an API request completed
package events
