package db

import (
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

type Database struct {
	Orm *gorm.DB
}

func NewDatabase(orm *gorm.DB) Database {
	return Database{Orm: orm}
}

// InitializeRegistry migrates the connector registry store.
func (db Database) InitializeRegistry() error {
	return db.Orm.AutoMigrate(
		&model.Connector{},
		&model.SubConnector{},
	)
}

// InitializeMapping migrates the company mapping store.
func (db Database) InitializeMapping() error {
	return db.Orm.AutoMigrate(
		&model.CompanyConnectorMapping{},
		&model.CompanyDestinationMapping{},
	)
}
