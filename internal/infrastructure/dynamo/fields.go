package dynamo

// DynamoDB attribute names used in key and update expressions.
const (
	fieldUserID        = "user_id"
	fieldEmail         = "email"
	fieldPasswordHash  = "password_hash"
	fieldRole          = "role"
	fieldIsSubmitted   = "is_submitted"
	fieldUpdatedAt     = "updated_at"
	fieldOTPID         = "otp_id"
	fieldNominatorID   = "nominator_id"
	fieldNomineeEmail  = "nominee_email"
	fieldStatus        = "status"
	fieldNomineeUserID = "nominee_user_id"
	fieldAttempts      = "attempts"
	fieldTTL           = "ttl"
)

// GSI names.
const (
	indexUserEmail    = "email-index"
	indexNomineeEmail = "nominee_email-index"
)
