package repositories

import (
	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/pkg/sanitize"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsersByIDs(ids []uint) (map[uint]models.User, error)
	UpdateUser(user *models.User) error
	SearchUsers(query string, limit int) ([]models.User, error)
	GetSuggestions(userID uint, limit int) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Callers are expected to
// lowercase the email first; stored emails are always lowercase.
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves users for a set of IDs keyed by ID, for
// decorating posts, connections and conversations with profiles.
func (r *PostgresUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	byID := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// SearchUsers searches for users by name or email (case-insensitive).
// LIKE wildcards in the query are escaped so they match literally.
func (r *PostgresUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	pattern := sanitize.SearchPattern(query)

	var users []models.User
	err := r.db.
		Where("LOWER(first_name) LIKE LOWER(?) ESCAPE '\\' OR LOWER(last_name) LIKE LOWER(?) ESCAPE '\\' OR LOWER(email) LIKE LOWER(?) ESCAPE '\\'",
			pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetSuggestions retrieves users who have no connection row with userID
// in either direction, excluding userID itself.
func (r *PostgresUserRepository) GetSuggestions(userID uint, limit int) ([]models.User, error) {
	subQuery1 := r.db.Table("connections").Select("addressee_id").Where("requester_id = ?", userID)
	subQuery2 := r.db.Table("connections").Select("requester_id").Where("addressee_id = ?", userID)

	var users []models.User
	err := r.db.
		Where("id <> ?", userID).
		Where("id NOT IN (?)", subQuery1).
		Where("id NOT IN (?)", subQuery2).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
