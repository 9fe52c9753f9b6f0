package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/testutil"
)

func aliceInput() CreateUserInput {
	return CreateUserInput{Email: "Alice@Example.com", Password: "password123", FirstName: "Alice", LastName: "Smith"}
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		env := setup(t)

		user, err := env.users.CreateUser(aliceInput())
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected lower-cased email, got %s", user.Email)
		}
		if user.Role != models.RoleInvestor {
			t.Errorf("expected investor role, got %s", user.Role)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
			t.Errorf("expected stored bcrypt hash: %v", err)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		env := setup(t)

		_, err := env.users.CreateUser(aliceInput())
		testutil.AssertNoError(t, err)

		again := aliceInput()
		again.Email = "alice@example.com"
		_, err = env.users.CreateUser(again)
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("short_password", func(t *testing.T) {
		env := setup(t)
		in := aliceInput()
		in.Password = "short"
		_, err := env.users.CreateUser(in)
		testutil.AssertKind(t, err, apperrors.KindValidation)
	})

	t.Run("invalid_email", func(t *testing.T) {
		env := setup(t)
		in := aliceInput()
		in.Email = "not-an-email"
		_, err := env.users.CreateUser(in)
		testutil.AssertKind(t, err, apperrors.KindValidation)
	})

	t.Run("invalid_role", func(t *testing.T) {
		env := setup(t)
		in := aliceInput()
		in.Role = "root"
		_, err := env.users.CreateUser(in)
		testutil.AssertKind(t, err, apperrors.KindValidation)
	})
}

func TestAttemptLogin(t *testing.T) {
	env := setup(t)
	user, err := env.users.CreateUser(aliceInput())
	testutil.AssertNoError(t, err)

	t.Run("valid", func(t *testing.T) {
		got, err := env.users.AttemptLogin("ALICE@example.com", "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := env.users.AttemptLogin("alice@example.com", "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := env.users.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := env.users.UpdateUser(user.ID, models.UserPatch{IsActive: ptr(false)})
		testutil.AssertNoError(t, err)

		_, err = env.users.AttemptLogin("alice@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_DISABLED")
	})
}

func TestUpdateUser(t *testing.T) {
	env := setup(t)
	user, err := env.users.CreateUser(aliceInput())
	testutil.AssertNoError(t, err)

	updated, err := env.users.UpdateUser(user.ID, models.UserPatch{
		FirstName: ptr("Alicia"),
		Role:      ptr(models.RoleAnalyst),
		Password:  ptr("newpassword"),
	})
	testutil.AssertNoError(t, err)
	if updated.FirstName != "Alicia" || updated.Role != models.RoleAnalyst {
		t.Errorf("patch not applied: %+v", updated)
	}
	if !env.users.VerifyPassword(updated, "newpassword") {
		t.Error("expected new password to verify")
	}
	if updated.Email != user.Email {
		t.Errorf("expected email unchanged, got %s", updated.Email)
	}

	_, err = env.users.UpdateUser(user.ID, models.UserPatch{Password: ptr("short")})
	testutil.AssertKind(t, err, apperrors.KindValidation)

	_, err = env.users.UpdateUser("missing", models.UserPatch{})
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestListAndDeleteUsers(t *testing.T) {
	env := setup(t)
	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, env.db)
	}

	page, err := env.users.ListUsers(pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if len(page.Data) != 2 || page.TotalItems != 3 || page.TotalPages != 2 {
		t.Errorf("unexpected page: %+v", page)
	}

	victim := page.Data[0].ID
	testutil.AssertNoError(t, env.users.DeleteUser(victim))
	_, err = env.users.GetUserByID(victim)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	testutil.AssertAppError(t, env.users.DeleteUser(victim), "USER_NOT_FOUND")
}
