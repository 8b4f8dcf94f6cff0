package app

import (
	"errors"
	"testing"
	"time"

	"docuchat/internal/model"
)

type stubUserStore struct {
	users  map[string]*model.User
	nextID uint
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*model.User)}
}

func (s *stubUserStore) Create(user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	clone := *user
	s.users[user.Username] = &clone
	return nil
}

func (s *stubUserStore) GetByUsername(username string) (*model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserStore) GetByID(id uint) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func newTestAuthService() (*AuthService, *stubUserStore) {
	store := newStubUserStore()
	return NewAuthService(store, "test-secret", time.Hour), store
}

func TestAnonymousSignupCreatesManager(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.Signup(SignupInput{Username: "alice", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Role != model.RoleManager {
		t.Errorf("expected role %q, got %q", model.RoleManager, user.Role)
	}
	if user.Manager != "" {
		t.Errorf("manager accounts must have no manager ref, got %q", user.Manager)
	}
	if user.PasswordHash == "correcthorse" {
		t.Error("credential stored in plaintext")
	}
}

func TestManagerSignupCreatesEmployee(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.Signup(SignupInput{Username: "alice", Password: "correcthorse"}); err != nil {
		t.Fatalf("manager signup failed: %v", err)
	}

	user, err := svc.Signup(SignupInput{
		Username:        "bob",
		Password:        "correcthorse",
		CreatorUsername: "alice",
		CreatorRole:     model.RoleManager,
	})
	if err != nil {
		t.Fatalf("employee signup failed: %v", err)
	}
	if user.Role != model.RoleEmployee {
		t.Errorf("expected role %q, got %q", model.RoleEmployee, user.Role)
	}
	if user.Manager != "alice" {
		t.Errorf("expected manager ref alice, got %q", user.Manager)
	}
}

func TestEmployeeCannotCreateAccounts(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(SignupInput{
		Username:        "mallory",
		Password:        "correcthorse",
		CreatorUsername: "bob",
		CreatorRole:     model.RoleEmployee,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.Signup(SignupInput{Username: "alice", Password: "correcthorse"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	_, err := svc.Signup(SignupInput{Username: "alice", Password: "otherpassword"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.Signup(SignupInput{Username: "alice", Password: "correcthorse"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	result, err := svc.Login(LoginInput{Username: "alice", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.User.Role != model.RoleManager {
		t.Errorf("unexpected role %q", result.User.Role)
	}

	if _, err := svc.Login(LoginInput{Username: "alice", Password: "wrongpassword"}); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := svc.Login(LoginInput{Username: "nobody", Password: "correcthorse"}); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential for unknown user, got %v", err)
	}
}
