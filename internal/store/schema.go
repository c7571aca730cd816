package store

// Table is the table holding imported case records.
const Table = "case_master"

// columns lists the writable columns in insert order.
var columns = []string{
	"case_id",
	"is_current_uk_resident",
	"first_name",
	"last_name",
	"date_of_birth",
	"third_party_reference_1",
	"file_name",
	"import_id",
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS case_master (
    id BIGSERIAL PRIMARY KEY,
    case_id TEXT NOT NULL,
    is_current_uk_resident BOOLEAN,
    first_name TEXT,
    last_name TEXT,
    date_of_birth DATE,
    third_party_reference_1 TEXT,
    file_name TEXT NOT NULL,
    import_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_case_master_file_name ON case_master(file_name);
`

// SQLite has no DATE type; dates are stored as yyyy-mm-dd text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS case_master (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    case_id TEXT NOT NULL,
    is_current_uk_resident BOOLEAN,
    first_name TEXT,
    last_name TEXT,
    date_of_birth TEXT,
    third_party_reference_1 TEXT,
    file_name TEXT NOT NULL,
    import_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_case_master_file_name ON case_master(file_name);
`

const selectColumns = `
SELECT case_id, is_current_uk_resident, first_name, last_name,
       date_of_birth, third_party_reference_1, file_name, import_id
FROM case_master`

const (
	pgSelectByFileName     = selectColumns + "\nWHERE file_name = $1\nORDER BY id"
	sqliteSelectByFileName = selectColumns + "\nWHERE file_name = ?\nORDER BY id"
)

const sqliteInsert = `
INSERT INTO case_master (
    case_id, is_current_uk_resident, first_name, last_name,
    date_of_birth, third_party_reference_1, file_name, import_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
