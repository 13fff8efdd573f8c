package policy_service

import (
	"clubdesk/internal/models"
	"clubdesk/internal/service"
)

type policyService struct{}

// NewPolicyService builds the access policy engine. It is stateless:
// every decision is a pure function of its inputs.
func NewPolicyService() service.PolicyService {
	return &policyService{}
}

// CanAct encodes the three roles. Anything not explicitly allowed is
// denied, including unknown roles, unknown actions and a nil user
// (unauthenticated).
func (s *policyService) CanAct(user *models.AppUser, action service.Action, actionCtx service.ActionContext) bool {
	if user == nil {
		return false
	}

	switch user.Role {
	case models.RoleManager:
		switch action {
		case service.ActionViewEntity,
			service.ActionCreateEntity,
			service.ActionEditEntity,
			service.ActionDeleteEntity,
			service.ActionSetAttendance,
			service.ActionEditLockedAttendance:
			return true
		}
		return false

	case models.RoleViewer:
		return action == service.ActionViewEntity

	case models.RoleCategoryAdmin:
		if user.Category == nil || actionCtx.Category != *user.Category {
			return false
		}
		switch action {
		case service.ActionViewEntity,
			service.ActionCreateEntity,
			service.ActionEditEntity,
			service.ActionDeleteEntity:
			return true
		case service.ActionSetAttendance:
			// One-shot write rule: once a record exists for the
			// (person, session) pair it is immutable to this role.
			return !actionCtx.RecordExists
		}
		return false
	}

	return false
}
