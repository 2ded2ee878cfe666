package projections

import (
	"context"
	"fmt"

	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/locker"
)

// GetMemberProfileQuery carries query parameters.
type GetMemberProfileQuery struct {
	Viewer   reconcile.Viewer
	MemberID string
}

// GetMemberProfileResult carries the query result.
type GetMemberProfileResult struct {
	Profile     account.Profile
	Assignment  *locker.Assignment // nil when no locker is reserved
	FreeLockers []locker.Locker    // only loaded when CanManage and nothing is reserved
	CanManage   bool               // viewer may reserve or cancel for this member
}

// GetMemberProfileDeps holds dependencies for GetMemberProfile.
type GetMemberProfileDeps struct {
	Users   UserGetter
	Lockers LockerReader
}

// QueryGetMemberProfile retrieves a member profile with its locker reservation.
// PRE: Valid member ID
// POST: Returns ErrAccessDenied unless the viewer is the member, a trainer or an admin
// INVARIANT: Only the member themself or an admin can manage the reservation
func QueryGetMemberProfile(ctx context.Context, query GetMemberProfileQuery, deps GetMemberProfileDeps) (GetMemberProfileResult, error) {
	v := query.Viewer
	if !v.Authenticated() {
		return GetMemberProfileResult{}, ErrAccessDenied
	}
	self := v.ID == query.MemberID
	if !self && v.Role != account.RoleTrainer && v.Role != account.RoleAdmin {
		return GetMemberProfileResult{}, ErrAccessDenied
	}

	profile, err := deps.Users.GetUser(ctx, query.MemberID)
	if err != nil {
		return GetMemberProfileResult{}, fmt.Errorf("get user %s: %w", query.MemberID, err)
	}

	result := GetMemberProfileResult{
		Profile:   profile,
		CanManage: self || v.Role == account.RoleAdmin,
	}

	assignment, err := deps.Lockers.GetAssignment(ctx, query.MemberID)
	if err != nil {
		return GetMemberProfileResult{}, fmt.Errorf("get locker assignment: %w", err)
	}
	result.Assignment = assignment

	if result.CanManage && assignment == nil {
		free, err := deps.Lockers.ListFreeLockers(ctx)
		if err != nil {
			return GetMemberProfileResult{}, fmt.Errorf("list free lockers: %w", err)
		}
		result.FreeLockers = free
	}
	return result, nil
}
