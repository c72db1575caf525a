/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	SyntaxErr
)

var sqlErrorNames = map[SQLError]string{
	UnknownErr:                  "unknown",
	NoIndexErr:                  "no such index",
	NoColumnErr:                 "no such column",
	ExistIndexErr:               "index exists",
	ExistColumnErr:              "column exists",
	NoTableErr:                  "no such table",
	ExistTableErr:               "table exists",
	DuplicateKeyErr:             "duplicate key",
	NotNullViolationErr:         "not null violation",
	ForeignKeyViolationErr:      "foreign key violation",
	CheckConstraintViolationErr: "check constraint violation",
	DataTruncatedErr:            "data truncated",
	InvalidTypeCastErr:          "invalid type cast",
	SyntaxErr:                   "syntax error",
}

func (e SQLError) String() string {
	if s, ok := sqlErrorNames[e]; ok {
		return s
	}
	return sqlErrorNames[UnknownErr]
}

// postgres SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
var pqCodes = map[pq.ErrorCode]SQLError{
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23503": ForeignKeyViolationErr,
	"23514": CheckConstraintViolationErr,
	"22001": DataTruncatedErr,
	"42P07": ExistTableErr,
	"42P01": NoTableErr,
	"42703": NoColumnErr,
	"42701": ExistColumnErr,
	"42704": NoIndexErr,
	"42804": InvalidTypeCastErr,
	"42601": SyntaxErr,
}

var mysqlNumbers = map[uint16]SQLError{
	1050: ExistTableErr,
	1146: NoTableErr,
	1091: NoIndexErr,
	1054: NoColumnErr,
	1061: ExistIndexErr,
	1060: ExistColumnErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
	1064: SyntaxErr,
}

// ClassifySQLError maps a driver error to a SQLError. ok is false when err
// does not look like a database error at all.
func ClassifySQLError(err error) (kind SQLError, ok bool) {
	if err == nil {
		return UnknownErr, false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if kind, found := pqCodes[pqErr.Code]; found {
			return kind, true
		}
		return UnknownErr, true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, found := mysqlNumbers[mysqlErr.Number]; found {
			return kind, true
		}
		return UnknownErr, true
	}

	// sqlite drivers and wrapped errors only expose text
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "undefined column") ||
		strings.Contains(s, "no such column"):
		return NoColumnErr, true
	case strings.Contains(s, "no such index"):
		return NoIndexErr, true
	case strings.Contains(s, "undefined table") ||
		strings.Contains(s, "no such table"):
		return NoTableErr, true
	case strings.Contains(s, "already exists") && strings.Contains(s, "index"):
		return ExistIndexErr, true
	case strings.Contains(s, "already exists") &&
		(strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return ExistTableErr, true
	case strings.Contains(s, "duplicate column"):
		return ExistColumnErr, true
	case strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed"):
		return DuplicateKeyErr, true
	case strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "not null constraint failed"):
		return NotNullViolationErr, true
	case strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "foreign key constraint failed"):
		return ForeignKeyViolationErr, true
	case strings.Contains(s, "check constraint"):
		return CheckConstraintViolationErr, true
	case strings.Contains(s, "string data right truncation") ||
		strings.Contains(s, "data truncated"):
		return DataTruncatedErr, true
	case strings.Contains(s, "datatype mismatch"):
		return InvalidTypeCastErr, true
	case strings.Contains(s, "syntax error"):
		return SyntaxErr, true
	}
	return UnknownErr, false
}
