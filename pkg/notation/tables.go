package notation

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

// Visibility maps a member's leading symbol to its visibility.
// Anything unknown is package visibility.
func Visibility(symbol byte) ir.Visibility {
	switch symbol {
	case '+':
		return ir.Public
	case '-':
		return ir.Private
	case '#':
		return ir.Protected
	}
	return ir.Package
}

// IsVisibilitySymbol reports whether c starts a class member line.
func IsVisibilitySymbol(c byte) bool {
	return c == '+' || c == '-' || c == '#' || c == '~'
}

// VisibilitySymbol is the reverse of Visibility.
func VisibilitySymbol(v ir.Visibility) string {
	switch v {
	case ir.Public:
		return "+"
	case ir.Private:
		return "-"
	case ir.Protected:
		return "#"
	}
	return "~"
}

var sqlTypes = map[string]string{
	"int":       "INTEGER",
	"integer":   "INTEGER",
	"bigint":    "BIGINT",
	"smallint":  "SMALLINT",
	"tinyint":   "BIT",
	"bit":       "BIT",
	"decimal":   "DECIMAL",
	"numeric":   "DECIMAL",
	"float":     "FLOAT",
	"real":      "FLOAT",
	"double":    "DOUBLE",
	"char":      "CHAR",
	"nchar":     "CHAR",
	"varchar":   "VARCHAR",
	"nvarchar":  "VARCHAR",
	"text":      "VARCHAR",
	"binary":    "BINARY",
	"varbinary": "VARBINARY",
	"blob":      "BLOB",
	"date":      "DATE",
	"time":      "TIME",
	"datetime":  "DATETIME",
	"datetime2": "DATETIME",
	"timestamp": "TIMESTAMP",
	"boolean":   "BOOLEAN",
	"bool":      "BOOLEAN",
	"geometry":  "GEOMETRY",
}

// canonical lower-case name written back for each SQL type.
var sqlNames = map[string]string{
	"INTEGER":   "int",
	"BIGINT":    "bigint",
	"SMALLINT":  "smallint",
	"BIT":       "bit",
	"DECIMAL":   "decimal",
	"FLOAT":     "float",
	"DOUBLE":    "double",
	"CHAR":      "char",
	"VARCHAR":   "varchar",
	"BINARY":    "binary",
	"VARBINARY": "varbinary",
	"BLOB":      "blob",
	"DATE":      "date",
	"TIME":      "time",
	"DATETIME":  "datetime",
	"TIMESTAMP": "timestamp",
	"BOOLEAN":   "boolean",
	"GEOMETRY":  "geometry",
}

// SQLType translates a column type to its SQL name. Unknown types are
// returned unchanged.
func SQLType(t string) string {
	if s, ok := sqlTypes[strings.ToLower(t)]; ok {
		return s
	}
	return t
}

// ERType is the reverse of SQLType: a SQL name becomes the lower-case
// diagram type. Anything else is returned unchanged.
func ERType(sql string) string {
	if s, ok := sqlNames[strings.ToUpper(sql)]; ok {
		return s
	}
	return sql
}

var multiplicities = map[ir.Cardinality]string{
	ir.ZeroOrOne:  "0..1",
	ir.ExactlyOne: "1",
	ir.ZeroOrMany: "0..*",
	ir.OneOrMany:  "1..*",
}

// Multiplicity returns the UML multiplicity of a cardinality, or "" when the
// cardinality is unset.
func Multiplicity(c ir.Cardinality) string {
	return multiplicities[c]
}

// CardinalityOf is the reverse of Multiplicity. "*" is read as 0..*.
func CardinalityOf(multiplicity string) (ir.Cardinality, bool) {
	m := strings.TrimSpace(multiplicity)
	if m == "*" {
		return ir.ZeroOrMany, true
	}
	for c, s := range multiplicities {
		if s == m {
			return c, true
		}
	}
	return "", false
}
