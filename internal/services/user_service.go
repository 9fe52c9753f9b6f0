package services

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// minPasswordLength is the shortest plain-text password accepted.
const minPasswordLength = 8

// userService handles user-related business logic.
type userService struct {
	users    *store.Collection[models.User, *models.User]
	validate *validator.Validator
	log      *zap.SugaredLogger
	cost     int
}

// NewUserService creates a new UserServicer. cost is the bcrypt cost; zero
// means bcrypt.DefaultCost.
func NewUserService(db *store.DB, v *validator.Validator, log *zap.SugaredLogger, cost int) UserServicer {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &userService{users: usersOf(db), validate: v, log: log, cost: cost}
}

// CreateUser registers a new user
func (s *userService) CreateUser(input CreateUserInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.WithViolations([]apperrors.Violation{{
			Field: "password", Rule: "min", Message: "password must be at least 8 characters",
		}})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      input.Role,
		IsActive:  true,
	}
	if user.Role == "" {
		user.Role = models.RoleInvestor
	}
	if err := s.validate.Validate(user); err != nil {
		return nil, err
	}

	created, err := s.users.CreateIf(user, func(existing []models.User) error {
		for i := range existing {
			if existing[i].Email == user.Email {
				return apperrors.ErrDuplicateEmail
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("user registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.users.FindOne(store.Eq("email", strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns a page of users without their credential hashes.
func (s *userService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.PublicUser], error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, storeErr(err)
	}
	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, *users[i].Public())
	}
	resp := pagination.Paginate(public, page)
	return &resp, nil
}

// UpdateUser applies patch. A new password is hashed before it is stored.
func (s *userService) UpdateUser(id string, patch models.UserPatch) (*models.User, error) {
	var hash string
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, apperrors.WithViolations([]apperrors.Violation{{
				Field: "password", Rule: "min", Message: "password must be at least 8 characters",
			}})
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.cost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		hash = string(h)
	}

	updated, err := s.users.UpdateByID(id, func(u *models.User) error {
		if patch.FirstName != nil {
			u.FirstName = strings.TrimSpace(*patch.FirstName)
		}
		if patch.LastName != nil {
			u.LastName = strings.TrimSpace(*patch.LastName)
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.IsActive != nil {
			u.IsActive = *patch.IsActive
		}
		if hash != "" {
			u.Password = hash
		}
		return s.validate.Validate(u)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return updated, nil
}

// DeleteUser removes a user.
func (s *userService) DeleteUser(id string) error {
	removed, err := s.users.DeleteByID(id)
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin returns the user for a matching email and password. Unknown
// emails and wrong passwords fail the same way.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		s.log.Infow("failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return user, nil
}
