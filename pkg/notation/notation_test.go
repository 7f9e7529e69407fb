package notation

import (
	"testing"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

func TestMatchClass(t *testing.T) {
	tests := []struct {
		line    string
		token   string
		kind    ir.RelationKind
		flipped bool
	}{
		{"Animal <|-- Dog", "<|--", ir.Inheritance, true},
		{"Dog --|> Animal", "--|>", ir.Inheritance, false},
		{"Shape <|.. Circle", "<|..", ir.Realization, true},
		{"Circle ..|> Shape", "..|>", ir.Realization, false},
		{"A <--> B", "<-->", ir.BidirectionalAssociation, false},
		{"Car *-- Wheel", "*--", ir.Composition, false},
		{"Wheel --* Car", "--*", ir.Composition, true},
		{"Pond o-- Duck", "o--", ir.Aggregation, false},
		{"Duck --o Pond", "--o", ir.Aggregation, true},
		{"Foo --> Bar", "-->", ir.DirectedAssociation, false},
		{"Bar <-- Foo", "<--", ir.DirectedAssociation, true},
		{"A ..> B", "..>", ir.Dependency, false},
		{"B <.. A", "<..", ir.Dependency, true},
		{"A -- B", "--", ir.Association, false},
		{"Foo-->Bar", "-->", ir.DirectedAssociation, false},
		{"Zoo--Bar", "--", ir.Association, false},
		{"Pond o--Duck", "o--", ir.Aggregation, false},
		{"Duck--o Pond", "--o", ir.Aggregation, true},
		{"Zoo--oPond", "--", ir.Association, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, _, ok := MatchClass(tt.line)
			if !ok {
				t.Fatalf("MatchClass(%q) found nothing", tt.line)
			}
			if c.Token != tt.token || c.Kind != tt.kind || c.Flipped != tt.flipped {
				t.Errorf("MatchClass(%q) = %+v, want %s/%s/%v", tt.line, c, tt.token, tt.kind, tt.flipped)
			}
		})
	}
}

func TestMatchClassOffset(t *testing.T) {
	c, i, ok := MatchClass("Foo-->Bar")
	if !ok || c.Token != "-->" || i != 3 {
		t.Errorf("MatchClass(Foo-->Bar) = %+v at %d", c, i)
	}
}

func TestMatchClassNone(t *testing.T) {
	if _, _, ok := MatchClass("A ~~ B"); ok {
		t.Error("expected no match")
	}
}

func TestClassTokenRoundTrip(t *testing.T) {
	kinds := []ir.RelationKind{
		ir.Inheritance, ir.Realization, ir.BidirectionalAssociation, ir.Composition,
		ir.Aggregation, ir.DirectedAssociation, ir.Dependency, ir.Association,
	}
	for _, k := range kinds {
		tok, ok := ClassToken(k)
		if !ok {
			t.Fatalf("ClassToken(%s) missing", k)
		}
		c, _, ok := MatchClass("A " + tok + " B")
		if !ok || c.Kind != k || c.Flipped {
			t.Errorf("token %q for %s re-parses as %+v", tok, k, c)
		}
	}
}

func TestERConnector(t *testing.T) {
	tests := []struct {
		line string
		tok  string
		weak bool
	}{
		{"CUSTOMER ||--o{ ORDER", "--", false},
		{"CUSTOMER ||..o{ ORDER", "..", true},
	}
	for _, tt := range tests {
		tok, _, weak, ok := ERConnector(tt.line)
		if !ok || tok != tt.tok || weak != tt.weak {
			t.Errorf("ERConnector(%q) = %q, %v, %v", tt.line, tok, weak, ok)
		}
	}
	if _, _, _, ok := ERConnector("A B"); ok {
		t.Error("expected no connector")
	}
}

func TestCardinalityGlyphs(t *testing.T) {
	left := map[string]ir.Cardinality{"A |o": ir.ZeroOrOne, "A ||": ir.ExactlyOne, "A }o": ir.ZeroOrMany, "A }|": ir.OneOrMany}
	for s, want := range left {
		got, _, ok := LeftCardinality(s)
		if !ok || got != want {
			t.Errorf("LeftCardinality(%q) = %s, want %s", s, got, want)
		}
	}
	right := map[string]ir.Cardinality{"o| B": ir.ZeroOrOne, "|| B": ir.ExactlyOne, "o{ B": ir.ZeroOrMany, "|{ B": ir.OneOrMany}
	for s, want := range right {
		got, _, ok := RightCardinality(s)
		if !ok || got != want {
			t.Errorf("RightCardinality(%q) = %s, want %s", s, got, want)
		}
	}
}

func TestERToken(t *testing.T) {
	tok, ok := ERToken(ir.ExactlyOne, ir.ZeroOrMany, false)
	if !ok || tok != "||--o{" {
		t.Errorf("ERToken = %q, %v", tok, ok)
	}
	tok, _ = ERToken(ir.ZeroOrOne, ir.OneOrMany, true)
	if tok != "|o..|{" {
		t.Errorf("ERToken weak = %q", tok)
	}
	if _, ok := ERToken("", ir.OneOrMany, false); ok {
		t.Error("expected failure on empty cardinality")
	}
}

func TestMatchArrow(t *testing.T) {
	tests := []struct {
		line string
		tok  string
		kind ir.MessageKind
		ls   ir.LineStyle
	}{
		{"A->>B", "->>", ir.AsynchCall, ir.Solid},
		{"A-->>B", "-->>", ir.AsynchCall, ir.Dotted},
		{"A->B", "->", ir.SynchCall, ir.Solid},
		{"A-->B", "-->", ir.SynchCall, ir.Dotted},
		{"A-xB", "-x", ir.DeleteMessage, ir.Solid},
		{"A--xB", "--x", ir.DeleteMessage, ir.Dotted},
		{"A-)B", "-)", ir.AsynchSignal, ir.Solid},
		{"A--)B", "--)", ir.AsynchSignal, ir.Dotted},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			a, idx, ok := MatchArrow(tt.line)
			if !ok || a.Token != tt.tok || a.Kind != tt.kind || a.Line != tt.ls {
				t.Errorf("MatchArrow(%q) = %+v", tt.line, a)
			}
			if idx != 1 {
				t.Errorf("offset = %d, want 1", idx)
			}
			if back := ArrowToken(a.Kind, a.Line); back != tt.tok {
				t.Errorf("ArrowToken(%s, %s) = %q, want %q", a.Kind, a.Line, back, tt.tok)
			}
		})
	}
}

func TestVisibility(t *testing.T) {
	tests := []struct {
		sym  byte
		want ir.Visibility
	}{
		{'+', ir.Public}, {'-', ir.Private}, {'#', ir.Protected}, {'~', ir.Package}, {'?', ir.Package},
	}
	for _, tt := range tests {
		if got := Visibility(tt.sym); got != tt.want {
			t.Errorf("Visibility(%q) = %s, want %s", tt.sym, got, tt.want)
		}
	}
	if VisibilitySymbol(ir.Protected) != "#" || VisibilitySymbol(ir.Package) != "~" {
		t.Error("VisibilitySymbol reverse mismatch")
	}
}

func TestSQLType(t *testing.T) {
	tests := map[string]string{
		"int": "INTEGER", "Integer": "INTEGER", "nvarchar": "VARCHAR", "text": "VARCHAR",
		"datetime2": "DATETIME", "bool": "BOOLEAN", "tinyint": "BIT", "uuid": "uuid",
	}
	for in, want := range tests {
		if got := SQLType(in); got != want {
			t.Errorf("SQLType(%q) = %q, want %q", in, got, want)
		}
	}
	if ERType("VARCHAR") != "varchar" || ERType("uuid") != "uuid" {
		t.Error("ERType reverse mismatch")
	}
}

func TestMultiplicity(t *testing.T) {
	for _, c := range []ir.Cardinality{ir.ZeroOrOne, ir.ExactlyOne, ir.ZeroOrMany, ir.OneOrMany} {
		m := Multiplicity(c)
		back, ok := CardinalityOf(m)
		if !ok || back != c {
			t.Errorf("CardinalityOf(Multiplicity(%s)) = %s", c, back)
		}
	}
	if c, _ := CardinalityOf("*"); c != ir.ZeroOrMany {
		t.Errorf("CardinalityOf(*) = %s", c)
	}
	if _, ok := CardinalityOf("2..3"); ok {
		t.Error("expected unknown multiplicity")
	}
}
