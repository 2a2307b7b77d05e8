package models

import (
	"gorm.io/gorm"
)

type migration struct {
	apply  func(db *gorm.DB) error
	revert func(db *gorm.DB) error
}

var migrations = []migration{
	// 001
	{
		apply: func(db *gorm.DB) error {
			var tables = []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}, &Session{}}

			for _, table := range tables {
				if !db.Migrator().HasTable(table) {
					err := db.Migrator().CreateTable(table)
					if err != nil {
						return err
					}
				}
			}

			return nil
		},
		revert: func(db *gorm.DB) error {
			var tables = []interface{}{&Session{}, &Follow{}, &Comment{}, &Post{}, &Group{}, &User{}}

			for _, table := range tables {
				err := db.Migrator().DropTable(table)
				if err != nil {
					return err
				}
			}

			return nil
		},
	},
}

// Migrate applies every pending migration over the given connection. The
// dialect is whatever the caller opened (postgres in production, sqlite in
// tests).
func Migrate(db *gorm.DB) error {
	for _, m := range migrations {
		if err := m.apply(db); err != nil {
			return err
		}
	}
	return nil
}

func Revert(db *gorm.DB) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		if err := migrations[i].revert(db); err != nil {
			return err
		}
	}
	return nil
}
