package logger

// Shared log field name constants, kept consistent across the project so log
// queries can rely on stable keys.
const (
	// FieldTraceID trace ID field
	FieldTraceID = "traceId"

	// FieldAction RPC action name field
	FieldAction = "action"

	// FieldProfile profile name field
	FieldProfile = "profile"

	// FieldDeck deck name field
	FieldDeck = "deck"

	// FieldModel note type name field
	FieldModel = "model"

	// FieldCardID card ID field
	FieldCardID = "cardId"

	// FieldNoteID note ID field
	FieldNoteID = "noteId"

	// FieldDuration elapsed time field
	FieldDuration = "duration"

	// FieldError error message field
	FieldError = "error"

	// FieldFile media filename field
	FieldFile = "file"
)
