package domain

// AddOutcome describes how a barcode add request concluded.
type AddOutcome string

// Add outcomes. NeedsManualEntry means no lookup path produced a usable
// title and the client should offer the manual-entry form.
const (
	AddOutcomeAdded            AddOutcome = "added"
	AddOutcomeAlreadyInLibrary AddOutcome = "already_in_library"
	AddOutcomeNeedsManualEntry AddOutcome = "needs_manual_entry"
)
