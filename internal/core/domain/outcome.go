package domain

import "fmt"

// OutcomeStatus classifies the result of one intake batch.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusPartial OutcomeStatus = "partial"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome is the batch result of processing one source document. Counts are
// always reported so consumers can tell partial success from total failure.
type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	Message   string        `json:"message"`
	Published int           `json:"published_count"`
	Total     int           `json:"total_count"`
}

// FailedOutcome wraps an unrecoverable error into a batch outcome.
func FailedOutcome(err error, total int) *Outcome {
	return &Outcome{
		Status:  StatusFailed,
		Message: err.Error(),
		Total:   total,
	}
}

// PublishedOutcome builds the outcome for a batch where published of total
// records made it out, choosing the success/partial/failed status from the
// ratio.
func PublishedOutcome(published, total int) *Outcome {
	o := &Outcome{
		Published: published,
		Total:     total,
		Message:   fmt.Sprintf("GeoJSON processed successfully: %d/%d STAC items published", published, total),
	}
	switch {
	case published == 0:
		o.Status = StatusFailed
		o.Message = fmt.Sprintf("failed to publish any STAC items from %d features", total)
	case published < total:
		o.Status = StatusPartial
	default:
		o.Status = StatusSuccess
	}
	return o
}

// IntakeRequest describes one source document to process, as delivered on the
// intake subject.
type IntakeRequest struct {
	ItemID       string `json:"item_id"`
	CollectionID string `json:"collection_id"`
	SourceURI    string `json:"source_uri"`
}
