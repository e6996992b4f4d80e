package topics

const (
	// Apostas de alto valor detectadas pelo tracker-service
	HighRollerDetected = "high_roller_detected"

	// DLQ
	HighRollerDetectedDLQ = "high_roller_detected_dlq"
)
