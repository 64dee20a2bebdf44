// internal/notify/recipients/resolver.go
package recipients

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/storage"
)

// EntityContext optionally identifies the entity that fired the event, for
// relationship lookups that cannot be satisfied from the data map alone.
type EntityContext struct {
	EntityType models.EntityType
	EntityID   int64
}

// Engine resolves an ordered list of recipient rules into To/Cc/Bcc buckets.
type Engine struct {
	store        storage.EntityStore
	participants *participants.Service
	logger       logger.Logger
}

func NewEngine(store storage.EntityStore, parts *participants.Service, log logger.Logger) *Engine {
	return &Engine{
		store:        store,
		participants: parts,
		logger:       log.WithFields(map[string]interface{}{"component": "recipients"}),
	}
}

// Resolve processes rules in priority order (ascending, stable) and unions
// their addresses into the rule's bucket. A failure inside one rule is
// logged and contributes zero addresses; sibling rules still resolve.
func (e *Engine) Resolve(ctx context.Context, rules []models.RecipientRule, data eventdata.Map, entityCtx *EntityContext) *ResolvedRecipients {
	sorted := append([]models.RecipientRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	resolved := NewResolvedRecipients()
	for _, rule := range sorted {
		e.resolveOne(ctx, rule, data, entityCtx, resolved)
	}
	return resolved
}

func (e *Engine) resolveOne(ctx context.Context, rule models.RecipientRule, data eventdata.Map, entityCtx *EntityContext, resolved *ResolvedRecipients) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule resolution panicked", map[string]interface{}{
				"ruleId": rule.ID, "panic": fmt.Sprintf("%v", r),
			})
		}
	}()

	if !rule.Bucket.Valid() {
		e.logger.Warn("rule ignored, unknown bucket", map[string]interface{}{
			"ruleId": rule.ID, "bucket": string(rule.Bucket),
		})
		return
	}

	variant, err := parseRule(rule, e.logger)
	if err != nil {
		e.logger.Warn("rule ignored, unknown kind", map[string]interface{}{
			"ruleId": rule.ID, "kind": string(rule.Kind),
		})
		return
	}

	addrs, err := e.addresses(ctx, variant, data, entityCtx)
	if err != nil {
		serr := commonerrors.NewRuleResolutionFailedError(rule.ID, err)
		e.logger.Error("rule resolution failed", map[string]interface{}{
			"ruleId": rule.ID, "kind": string(rule.Kind), "error": serr.Error(),
		})
		return
	}

	e.logger.Debug("rule resolved", map[string]interface{}{
		"ruleId": rule.ID, "priority": rule.Priority, "addresses": len(addrs),
	})

	// Participant rules carrying several addresses follow the "first To,
	// rest Bcc" business rule; every other shape fills the rule's bucket.
	if _, isParticipant := variant.(participantRule); isParticipant && len(addrs) > 1 {
		resolved.Add(rule.Bucket, addrs[0])
		for _, a := range addrs[1:] {
			resolved.Add(models.BucketBcc, a)
		}
		return
	}

	for _, a := range addrs {
		resolved.Add(rule.Bucket, a)
	}
}

func (e *Engine) addresses(ctx context.Context, variant ruleVariant, data eventdata.Map, entityCtx *EntityContext) ([]string, error) {
	switch v := variant.(type) {
	case roleRule:
		return e.roleAddresses(ctx, v, data)
	case relationRule:
		return e.relationAddresses(ctx, v, data, entityCtx)
	case fixedRule:
		return []string{v.Email}, nil
	case participantRule:
		key, ok := participantKeys[v.Participant]
		if !ok {
			// unknown participant key resolves to nothing
			return nil, nil
		}
		return participants.EmailList(data[key]), nil
	}
	return nil, nil
}

func (e *Engine) roleAddresses(ctx context.Context, v roleRule, data eventdata.Map) ([]string, error) {
	if !v.Condition.matches(data) {
		return nil, nil
	}

	var (
		users []models.User
		err   error
	)
	if v.Condition != nil && v.Condition.SameFaculty {
		facultyID, parseErr := strconv.ParseInt(data[eventdata.KeyFacultyID], 10, 64)
		if parseErr != nil {
			// no faculty in the event data, fall back to the whole role
			users, err = e.store.UsersByRole(ctx, v.RoleCode)
		} else {
			users, err = e.store.UsersByRoleInFaculty(ctx, v.RoleCode, facultyID)
		}
	} else {
		users, err = e.store.UsersByRole(ctx, v.RoleCode)
	}
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(users))
	for _, u := range users {
		addrs = append(addrs, u.Email)
	}
	return addrs, nil
}

// entityID returns the id to use for a relation lookup: the explicit entity
// context when it matches the wanted kind, otherwise the id carried in the
// event data map. A zero id means the relation cannot be resolved.
func entityID(entityCtx *EntityContext, want models.EntityType, data eventdata.Map, key string) int64 {
	if entityCtx != nil && entityCtx.EntityType == want && entityCtx.EntityID != 0 {
		return entityCtx.EntityID
	}
	id, err := strconv.ParseInt(data[key], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (e *Engine) relationAddresses(ctx context.Context, v relationRule, data eventdata.Map, entityCtx *EntityContext) ([]string, error) {
	switch v.Tag {
	case models.RelationProposalDirector:
		proposalID := entityID(entityCtx, models.EntityProposal, data, eventdata.KeyProposalID)
		if proposalID == 0 {
			return nil, nil
		}
		p, err := e.store.Proposal(ctx, proposalID)
		if err != nil {
			if storage.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		u, err := e.store.User(ctx, p.DirectorID)
		if err != nil {
			if storage.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return []string{u.Email}, nil

	case models.RelationFacultyCoordinator:
		facultyID, err := strconv.ParseInt(data[eventdata.KeyFacultyID], 10, 64)
		if err != nil {
			return nil, nil
		}
		users, err := e.store.UsersByRoleInFaculty(ctx, models.RoleCoordinator, facultyID)
		if err != nil {
			return nil, err
		}
		addrs := make([]string, 0, len(users))
		for _, u := range users {
			addrs = append(addrs, u.Email)
		}
		return addrs, nil

	case models.RelationAssignedStudents:
		inscriptionID := entityID(entityCtx, models.EntityInscription, data, eventdata.KeyInscriptionID)
		if inscriptionID == 0 {
			return nil, nil
		}
		sum, err := e.participants.ByInscription(ctx, inscriptionID)
		if err != nil {
			return nil, err
		}
		return participants.EmailList(sum.Emails), nil

	default:
		// unimplemented relation tags resolve to nothing, not an error
		e.logger.Debug("relation tag not implemented", map[string]interface{}{
			"tag": v.Tag,
		})
		return nil, nil
	}
}
