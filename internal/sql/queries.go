package sql

import (
	"embed"
)

// Migrations holds the schema files applied by db.ApplyMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/insert_report.sql
var InsertReport string

//go:embed queries/recent_reports.sql
var RecentReports string

//go:embed queries/count_reports.sql
var CountReports string
