package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

func newRoleSvc(users *memUsers, requests *memRequests) *RoleService {
	svc := NewRoleService(users, requests, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestRoleService_Register(t *testing.T) {
	users := newMemUsers()
	svc := newRoleSvc(users, newMemRequests())
	ctx := context.Background()

	u, created, err := svc.Register(ctx, ports.RegisterInput{Email: " New@Example.com", Name: "Nina"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !created || u.Email != "new@example.com" || u.Role != domain.RoleUser {
		t.Errorf("unexpected registration: created=%v user=%+v", created, u)
	}
	if u.UserActions != (domain.UserActions{}) {
		t.Errorf("counters must start at zero, got %+v", u.UserActions)
	}

	again, created, err := svc.Register(ctx, ports.RegisterInput{Email: "new@example.com", Name: "Other"})
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if created || again.Name != "Nina" {
		t.Errorf("second register must return the stored user, got created=%v %+v", created, again)
	}

	if _, _, err := svc.Register(ctx, ports.RegisterInput{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("empty email: expected ErrUnauthenticated, got %v", err)
	}
}

func TestRoleService_GetRole(t *testing.T) {
	svc := newRoleSvc(seedUsers(), newMemRequests())

	role, err := svc.GetRole(context.Background(), "Creator@Example.com")
	if err != nil || role != domain.RoleCreator {
		t.Errorf("expected creator, got %q (%v)", role, err)
	}
	if _, err := svc.GetRole(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRoleService_SetRole(t *testing.T) {
	users := seedUsers()
	svc := newRoleSvc(users, newMemRequests())
	ctx := context.Background()

	if err := svc.SetRole(ctx, participant.Email, domain.RoleCreator, admin); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if users.get(participant.Email).Role != domain.RoleCreator {
		t.Error("expected role updated")
	}
	if err := svc.SetRole(ctx, participant.Email, "owner", admin); !errors.Is(err, domain.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if err := svc.SetRole(ctx, participant.Email, domain.RoleAdmin, creator); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListUsers(ctx, participant); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("ListUsers by user: expected ErrForbidden, got %v", err)
	}
}

func TestRoleService_PromotionFlow(t *testing.T) {
	users := seedUsers()
	requests := newMemRequests()
	svc := newRoleSvc(users, requests)
	ctx := context.Background()

	req, err := svc.RequestCreatorPromotion(ctx, participant.Email)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !req.RequestedAt.Equal(fixedNow) {
		t.Errorf("unexpected requestedAt %v", req.RequestedAt)
	}
	if _, err := svc.RequestCreatorPromotion(ctx, participant.Email); !errors.Is(err, domain.ErrAlreadyRequested) {
		t.Errorf("duplicate request: expected ErrAlreadyRequested, got %v", err)
	}
	if _, err := svc.RequestCreatorPromotion(ctx, creator.Email); !errors.Is(err, domain.ErrAlreadyCreator) {
		t.Errorf("creator request: expected ErrAlreadyCreator, got %v", err)
	}

	list, err := svc.ListRequests(ctx, admin)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one outstanding request, got %d (%v)", len(list), err)
	}

	if err := svc.ApprovePromotion(ctx, participant.Email, admin); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if users.get(participant.Email).Role != domain.RoleCreator {
		t.Error("expected promotion to creator")
	}
	if err := svc.ApprovePromotion(ctx, participant.Email, admin); !errors.Is(err, domain.ErrCreatorRequestNotFound) {
		t.Errorf("second approve: expected ErrCreatorRequestNotFound, got %v", err)
	}
}

func TestRoleService_Reject(t *testing.T) {
	users := seedUsers()
	requests := newMemRequests()
	svc := newRoleSvc(users, requests)
	ctx := context.Background()

	if _, err := svc.RequestCreatorPromotion(ctx, participant.Email); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.RejectPromotion(ctx, participant.Email, admin); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if users.get(participant.Email).Role != domain.RoleUser {
		t.Error("rejection must not change the role")
	}
	if _, err := svc.RequestCreatorPromotion(ctx, participant.Email); err != nil {
		t.Errorf("a rejected user may request again, got %v", err)
	}
}

func TestRoleService_ApproveRestoresRequestOnFailure(t *testing.T) {
	users := seedUsers()
	requests := newMemRequests()
	svc := newRoleSvc(users, requests)
	ctx := context.Background()

	if _, err := svc.RequestCreatorPromotion(ctx, participant.Email); err != nil {
		t.Fatalf("request: %v", err)
	}
	users.setRoleErr = errors.New("primary stepped down")

	if err := svc.ApprovePromotion(ctx, participant.Email, admin); err == nil {
		t.Fatal("expected approve to fail")
	}
	if list, _ := requests.List(ctx); len(list) != 1 {
		t.Errorf("expected the request to be restored, got %d", len(list))
	}
}

func TestRoleService_ConcurrentApprovals(t *testing.T) {
	users := seedUsers()
	requests := newMemRequests()
	svc := newRoleSvc(users, requests)
	ctx := context.Background()

	if _, err := svc.RequestCreatorPromotion(ctx, participant.Email); err != nil {
		t.Fatalf("request: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.ApprovePromotion(ctx, participant.Email, admin)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if !errors.Is(err, domain.ErrCreatorRequestNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Errorf("expected exactly one approval, got %d", ok)
	}
}

func TestRoleService_UpdateProfileAndCounters(t *testing.T) {
	users := seedUsers()
	svc := newRoleSvc(users, newMemRequests())
	ctx := context.Background()

	u, err := svc.UpdateProfile(ctx, participant.Email, domain.ProfileUpdate{Name: "Alice B", Bio: "designer"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Alice B" || u.Bio != "designer" || u.Role != domain.RoleUser {
		t.Errorf("unexpected profile: %+v", u)
	}

	if err := svc.IncrementCounters(ctx, participant.Email, domain.CounterDelta{}); err != nil {
		t.Errorf("zero delta must be a no-op, got %v", err)
	}
	if err := svc.IncrementCounters(ctx, "ghost@example.com", domain.CounterDelta{ContestsWon: 1}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected wrapped ErrUserNotFound, got %v", err)
	}
}
