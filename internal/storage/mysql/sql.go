package mysql

// One table of opaque records keyed by derived address. The primary key
// carries the create-xor-fail contract: a plain INSERT on an occupied key
// fails with a duplicate-entry error.
const insertRecordSQL = `
INSERT INTO records (k, v)
VALUES (?, ?)
`

const getRecordSQL = `
SELECT v FROM records WHERE k = ?
`

const putRecordSQL = `
INSERT INTO records (k, v)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  v          = VALUES(v),
  updated_at = CURRENT_TIMESTAMP
`
