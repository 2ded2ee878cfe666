package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "gymhub/internal/adapters/email"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
)

// sendTimeout bounds a best-effort notification email.
const sendTimeout = 5 * time.Second

var ErrNotAMember = errors.New("only members can enroll in classes")

// EnrollmentStoreForEnroll defines the store interface needed by EnrollMember
// and UnenrollMember. Both calls enforce capacity and uniqueness atomically.
type EnrollmentStoreForEnroll interface {
	Create(ctx context.Context, record enrollment.Record) (int, error)
	Delete(ctx context.Context, memberID, classID string) (int, error)
}

// AccountReader looks up accounts by ID.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ClassReader looks up classes by ID.
type ClassReader interface {
	GetByID(ctx context.Context, id string) (gymclass.Class, error)
}

// EnrollMemberInput carries input for EnrollMember and UnenrollMember.
type EnrollMemberInput struct {
	Actor    Actor
	MemberID string
	ClassID  string
}

// EnrollMemberResult carries the stored record and the spots left afterwards.
type EnrollMemberResult struct {
	Record         enrollment.Record
	AvailableSpots int
}

// EnrollMemberDeps holds dependencies for EnrollMember and UnenrollMember.
type EnrollMemberDeps struct {
	EnrollmentStore EnrollmentStoreForEnroll
	AccountStore    AccountReader
	ClassStore      ClassReader
	Sender          emailAdapter.Sender // optional: nil skips notifications
	From            string
	ReplyTo         string
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteEnrollMember enrolls a member in a class.
// PRE: Actor is authenticated
// POST: One record exists for (MemberID, ClassID); AvailableSpots is the
// server count after the insert
// INVARIANT: Capacity and uniqueness are checked inside the store's transaction
func ExecuteEnrollMember(ctx context.Context, input EnrollMemberInput, deps EnrollMemberDeps) (EnrollMemberResult, error) {
	if err := input.Actor.check(); err != nil {
		return EnrollMemberResult{}, err
	}
	if !input.Actor.canActFor(input.MemberID) {
		return EnrollMemberResult{}, ErrForbidden
	}

	member, err := deps.AccountStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return EnrollMemberResult{}, fmt.Errorf("member %s: %w", input.MemberID, err)
	}
	if member.Role != account.RoleMember {
		return EnrollMemberResult{}, ErrNotAMember
	}

	rec := enrollment.Record{
		ID:        deps.GenerateID(),
		MemberID:  input.MemberID,
		ClassID:   input.ClassID,
		CreatedAt: deps.Now(),
	}
	if err := rec.Validate(); err != nil {
		return EnrollMemberResult{}, err
	}

	available, err := deps.EnrollmentStore.Create(ctx, rec)
	if err != nil {
		slog.Info("enrollment_event", "event", "enroll_rejected", "member_id", rec.MemberID, "class_id", rec.ClassID, "error", err)
		return EnrollMemberResult{}, err
	}
	rec.MemberName = member.DisplayName
	slog.Info("enrollment_event", "event", "member_enrolled", "member_id", rec.MemberID, "class_id", rec.ClassID, "available", available)

	notify(ctx, deps, member, rec.ClassID, func(msg emailAdapter.ClassMessage) (emailAdapter.SendRequest, error) {
		return emailAdapter.EnrollmentConfirmation(msg, available)
	})

	return EnrollMemberResult{Record: rec, AvailableSpots: available}, nil
}

// ExecuteUnenrollMember removes a member from a class.
// PRE: Actor is authenticated
// POST: No record exists for (MemberID, ClassID); returns the spots left
func ExecuteUnenrollMember(ctx context.Context, input EnrollMemberInput, deps EnrollMemberDeps) (int, error) {
	if err := input.Actor.check(); err != nil {
		return 0, err
	}
	if !input.Actor.canActFor(input.MemberID) {
		return 0, ErrForbidden
	}
	if input.MemberID == "" {
		return 0, enrollment.ErrEmptyMemberID
	}
	if input.ClassID == "" {
		return 0, enrollment.ErrEmptyClassID
	}

	available, err := deps.EnrollmentStore.Delete(ctx, input.MemberID, input.ClassID)
	if err != nil {
		return 0, err
	}
	slog.Info("enrollment_event", "event", "member_unenrolled", "member_id", input.MemberID, "class_id", input.ClassID, "available", available)

	if deps.Sender != nil {
		if member, err := deps.AccountStore.GetByID(ctx, input.MemberID); err == nil {
			notify(ctx, deps, member, input.ClassID, emailAdapter.CancellationNotice)
		}
	}
	return available, nil
}

// notify sends a class email to member. Failures are logged and never
// affect the enrollment outcome.
func notify(ctx context.Context, deps EnrollMemberDeps, member account.Account, classID string, build func(emailAdapter.ClassMessage) (emailAdapter.SendRequest, error)) {
	if deps.Sender == nil || deps.ClassStore == nil {
		return
	}
	class, err := deps.ClassStore.GetByID(ctx, classID)
	if err != nil {
		slog.Warn("email_event", "event", "notify_skipped", "class_id", classID, "error", err)
		return
	}
	req, err := build(emailAdapter.ClassMessage{
		MemberEmail: member.Email,
		MemberName:  member.DisplayName,
		ClassName:   class.Name,
		TrainerName: class.TrainerName,
		StartsAt:    class.StartsAt,
	})
	if err != nil {
		slog.Warn("email_event", "event", "render_failed", "class_id", classID, "error", err)
		return
	}
	req.From = deps.From
	req.ReplyTo = deps.ReplyTo

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	res, err := deps.Sender.Send(sendCtx, req)
	if err != nil {
		slog.Warn("email_event", "event", "send_failed", "member_id", member.ID, "class_id", classID, "error", err)
		return
	}
	slog.Info("email_event", "event", "sent", "member_id", member.ID, "class_id", classID, "message_id", res.MessageID)
}
