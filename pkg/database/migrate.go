// pkg/database/migrate.go
package database

import (
	"github.com/kaqfa/student-space/internal/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ParentStudent{},
		&models.Subject{},
		&models.Topic{},
		&models.Question{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizSession{},
		&models.SessionQuestion{},
		&models.Attempt{},
	)
}
