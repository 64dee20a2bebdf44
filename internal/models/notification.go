// internal/models/notification.go
package models

import (
	commonerrors "academic-notifications/internal/common/errors"
)

// RecipientBucket is one of the three address buckets of an email message.
type RecipientBucket string

const (
	BucketTo  RecipientBucket = "TO"
	BucketCc  RecipientBucket = "CC"
	BucketBcc RecipientBucket = "BCC"
)

func (b RecipientBucket) Valid() bool {
	switch b {
	case BucketTo, BucketCc, BucketBcc:
		return true
	}
	return false
}

// RuleKind selects how a recipient rule's value is interpreted.
type RuleKind string

const (
	RuleByRole           RuleKind = "BY_ROLE"
	RuleByEntityRelation RuleKind = "BY_ENTITY_RELATION"
	RuleFixedEmail       RuleKind = "FIXED_EMAIL"
	RuleEventParticipant RuleKind = "EVENT_PARTICIPANT"
)

func (k RuleKind) Valid() bool {
	switch k {
	case RuleByRole, RuleByEntityRelation, RuleFixedEmail, RuleEventParticipant:
		return true
	}
	return false
}

// Entity-relation tags carried in the rule value of BY_ENTITY_RELATION rules.
const (
	RelationProposalDirector   = "PROPOSAL_DIRECTOR"
	RelationFacultyCoordinator = "FACULTY_COORDINATOR"
	RelationAssignedStudents   = "ASSIGNED_STUDENTS"
)

// NotificationConfiguration identifies one logical event. Read-only to the
// core; edited by configuration tooling.
type NotificationConfiguration struct {
	ID              int64  `json:"id"`
	EventName       string `json:"eventName"`
	SubjectTemplate string `json:"subjectTemplate"`
	BodyTemplate    string `json:"bodyTemplate"`
	Active          bool   `json:"active"`
}

// RecipientRule belongs to exactly one NotificationConfiguration. Priority
// controls evaluation order only (ascending first); bucket membership is the
// union of all matched rules.
type RecipientRule struct {
	ID            int64           `json:"id"`
	ConfigID      int64           `json:"configId"`
	Bucket        RecipientBucket `json:"bucket"`
	Kind          RuleKind        `json:"kind"`
	Value         string          `json:"value"`
	ConditionJSON string          `json:"conditionJson,omitempty"`
	Priority      int             `json:"priority"`
}

// Validate rejects rules whose bucket or kind falls outside the closed sets.
func (r RecipientRule) Validate() error {
	if !r.Bucket.Valid() {
		return commonerrors.NewInvalidRuleBucketError(string(r.Bucket))
	}
	if !r.Kind.Valid() {
		return commonerrors.NewInvalidRuleKindError(string(r.Kind))
	}
	return nil
}

// EmailMessage is a fully resolved message handed to the delivery queue.
type EmailMessage struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    bool     `json:"html"`
}
