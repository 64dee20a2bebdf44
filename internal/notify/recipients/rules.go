// internal/notify/recipients/rules.go
package recipients

import (
	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
)

// ruleVariant is the tagged union over the four rule kinds. Parsing a stored
// rule into a variant makes the dispatch exhaustive: an unknown kind fails
// at parse time instead of silently resolving to nothing.
type ruleVariant interface {
	isRuleVariant()
}

// roleRule resolves all active users holding a role, optionally narrowed by
// a condition matched against the event data.
type roleRule struct {
	RoleCode  string
	Condition *condition
}

// relationRule resolves addresses through an entity relationship tag.
type relationRule struct {
	Tag string
}

// fixedRule's value is the address itself.
type fixedRule struct {
	Email string
}

// participantRule resolves a well-known participant key from the event data.
type participantRule struct {
	Participant string
}

func (roleRule) isRuleVariant()        {}
func (relationRule) isRuleVariant()    {}
func (fixedRule) isRuleVariant()       {}
func (participantRule) isRuleVariant() {}

// parseRule turns a stored RecipientRule into its typed variant. Unknown
// kinds are a parse error; condition parse failures degrade to the
// unfiltered variant rather than failing the rule.
func parseRule(r models.RecipientRule, log conditionLogger) (ruleVariant, error) {
	switch r.Kind {
	case models.RuleByRole:
		return roleRule{
			RoleCode:  r.Value,
			Condition: parseCondition(r.ConditionJSON, log),
		}, nil
	case models.RuleByEntityRelation:
		return relationRule{Tag: r.Value}, nil
	case models.RuleFixedEmail:
		return fixedRule{Email: r.Value}, nil
	case models.RuleEventParticipant:
		return participantRule{Participant: r.Value}, nil
	default:
		return nil, commonerrors.NewInvalidRuleKindError(string(r.Kind))
	}
}

// Participant keys accepted by EVENT_PARTICIPANT rules, mapped to the event
// data key carrying the address value.
var participantKeys = map[string]string{
	"STUDENT":        eventdata.KeyStudentEmails,
	"DIRECTOR":       eventdata.KeyDirectorEmail,
	"TEACHER":        eventdata.KeyTeacherEmail,
	"FORMER_TEACHER": eventdata.KeyFormerTeacherEmail,
}
