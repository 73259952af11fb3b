package schema

import "strings"

// Table names used by the lab database.
const (
	TableLabMember    = "LAB_MEMBER"
	TableProject      = "PROJECT"
	TableGrant        = "GRANT"
	TableEquipment    = "EQUIPMENT"
	TablePublication  = "PUBLICATION"
	TableStudent      = "STUDENT"
	TableFaculty      = "FACULTY"
	TableCollaborator = "COLLABORATOR"
)

// readOnlyTables lists tables that expose list/reload only. Matched
// case-insensitively.
var readOnlyTables = map[string]struct{}{
	TableGrant:        {},
	TableStudent:      {},
	TableFaculty:      {},
	TableCollaborator: {},
}

// IsReadOnly reports whether a table name belongs to the read-only set.
func IsReadOnly(name string) bool {
	_, ok := readOnlyTables[strings.ToUpper(name)]
	return ok
}

func declare(name string, readOnly bool, fields ...Field) Table {
	return Table{Name: name, Fields: fields, ReadOnly: readOnly}
}

// Default returns the built-in lab database registry.
func Default() *Registry {
	return MustNewRegistry(
		declare(TableLabMember, false,
			NewField("MID", TypeNumber),
			NewField("NAME", TypeString),
			NewField("MTYPE", TypeString),
			NewField("JOINDATE", TypeDate),
		),
		declare(TableProject, false,
			NewField("PID", TypeNumber),
			NewField("TITLE", TypeString),
			NewField("START_DATE", TypeDate),
			NewField("END_DATE", TypeDate),
			NewField("EXP_DURATION", TypeString),
		),
		declare(TableGrant, true,
			NewField("GID", TypeNumber),
			NewField("AMOUNT", TypeNumber),
			NewField("SOURCE", TypeString),
			NewField("YEAR", TypeNumber),
			NewField("DURATION", TypeString),
		),
		declare(TableEquipment, false,
			NewField("EID", TypeNumber),
			NewField("ENAME", TypeString),
			NewField("ETYPE", TypeString),
			NewField("STATUS", TypeString),
			NewField("PDATE", TypeDate),
		),
		declare(TablePublication, false,
			NewField("PUBID", TypeNumber),
			NewField("TITLE", TypeString),
			NewField("VENUE", TypeString),
			NewField("PUBDATE", TypeDate),
			NewField("DOI", TypeString),
		),
		declare(TableStudent, true,
			NewField("SID", TypeNumber),
			NewField("NAME", TypeString),
			NewField("MAJOR", TypeString),
			NewField("LEVEL", TypeString),
		),
		declare(TableFaculty, true,
			NewField("FID", TypeNumber),
			NewField("NAME", TypeString),
			NewField("DEPT", TypeString),
		),
		declare(TableCollaborator, true,
			NewField("CID", TypeNumber),
			NewField("NAME", TypeString),
			NewField("AFFILIATION", TypeString),
			NewField("BIOGRAPHY", TypeString),
		),
	)
}
