package results

import "errors"

// Sentinel errors surfaced by the results service. The API layer maps
// them to HTTP statuses with errors.Is; messages are user-visible.
var (
	// ErrNotFound covers unknown race, league, entry and result-set
	// references.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState guards the workflow: editing a published result
	// set directly, or touching a race whose results another flow has
	// already finalized. Recoverable, the caller must unpublish or
	// switch to the confirmed set first.
	ErrInvalidState = errors.New("invalid state")

	// ErrMalformedEvent is an ingestion-time usage error: bad event
	// kind, missing entry reference on a lap/undo, or an entry that
	// does not belong to the race. Replay tolerates junk in the stored
	// log; ingestion does not accept it in the first place.
	ErrMalformedEvent = errors.New("malformed event")
)
