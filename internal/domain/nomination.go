package domain

import "time"

type NominationStatus string

const (
	NominationPending   NominationStatus = "Pending"
	NominationSubmitted NominationStatus = "Submitted"
)

// Nomination is unique per (NominatorID, NomineeEmail). It moves from
// Pending to Submitted once the nominee has an account.
type Nomination struct {
	NominationID  string           `json:"id" dynamodbav:"nomination_id"`
	NominatorID   string           `json:"nominatorId" dynamodbav:"nominator_id"`
	NomineeEmail  string           `json:"nomineeEmail" dynamodbav:"nominee_email"`
	NomineeName   string           `json:"nomineeName" dynamodbav:"nominee_name"`
	NomineeMobile string           `json:"nomineeMobile,omitempty" dynamodbav:"nominee_mobile,omitempty"`
	Relationship  string           `json:"relationship,omitempty" dynamodbav:"relationship,omitempty"`
	Status        NominationStatus `json:"status" dynamodbav:"status"`
	NomineeUserID *string          `json:"nomineeUserId,omitempty" dynamodbav:"nominee_user_id,omitempty"`
	NominatedAt   time.Time        `json:"nominatedAt" dynamodbav:"nominated_at"`
}

type CreateNominationRequest struct {
	NomineeEmail  string `json:"nomineeEmail" validate:"required,email"`
	NomineeName   string `json:"nomineeName" validate:"required"`
	NomineeMobile string `json:"nomineeMobile" validate:"omitempty,max=20"`
	Relationship  string `json:"relationship" validate:"omitempty,max=100"`
}
