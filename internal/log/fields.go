package log

// Canonical field name constants for structured logging.
const (
	// Identity / correlation fields
	FieldRunID         = "run_id"
	FieldCorrelationID = "correlation_id"
	FieldPlanID        = "plan_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Media fields
	FieldTitle   = "title"
	FieldSeason  = "season"
	FieldEpisode = "episode"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path fields
	FieldPath        = "path"
	FieldDestination = "destination"
)
