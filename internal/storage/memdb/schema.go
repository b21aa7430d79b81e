package memdb

import "github.com/hashicorp/go-memdb"

const (
	tableProjects      = "projects"
	tableRegistrations = "registrations"

	indexID           = "id"
	indexStatus       = "status"
	indexProjectID    = "project_id"
	indexProjectEmail = "project_email"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProjects: {
				Name: tableProjects,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexStatus: {
						Name:         indexStatus,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Status"},
					},
				},
			},
			tableRegistrations: {
				Name: tableRegistrations,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexProjectID: {
						Name:    indexProjectID,
						Indexer: &memdb.StringFieldIndex{Field: "ProjectID"},
					},
					indexProjectEmail: {
						Name:   indexProjectEmail,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ProjectID"},
								&memdb.StringFieldIndex{Field: "Email", Lowercase: true},
							},
						},
					},
				},
			},
		},
	}
}
