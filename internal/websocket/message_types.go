package websocket

// Server-to-client event types.
const (
	// Quiz attempt lifecycle.
	ATTEMPT_TIME_WARNING    = "ATTEMPT_TIME_WARNING"
	ATTEMPT_EXPIRED         = "ATTEMPT_EXPIRED"
	ATTEMPT_SUBMIT_RETRYING = "ATTEMPT_SUBMIT_RETRYING"
	QUIZ_RESULT_READY       = "QUIZ_RESULT_READY"

	// Platform notifications.
	ENROLLMENT_CONFIRMED = "ENROLLMENT_CONFIRMED"
	CERTIFICATE_ISSUED   = "CERTIFICATE_ISSUED"

	// Connection housekeeping.
	SERVER_ERROR = "server:error"
	SERVER_PONG  = "server:pong"
)

// Client-to-server message types.
const (
	CLIENT_PING = "client:ping"
)
