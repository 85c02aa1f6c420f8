package database

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFilingFiltersClauses(t *testing.T) {
	tests := []struct {
		name     string
		company  string
		date     string
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "no filters",
			wantSQL:  " WHERE 1=1",
			wantArgs: []interface{}{},
		},
		{
			name:     "company only",
			company:  "Acme",
			wantSQL:  " WHERE 1=1 AND company_name LIKE ?",
			wantArgs: []interface{}{"%Acme%"},
		},
		{
			name:     "date only",
			date:     "15/03/2024",
			wantSQL:  " WHERE 1=1 AND filing_date = ?",
			wantArgs: []interface{}{"15/03/2024"},
		},
		{
			name:     "company and date",
			company:  "Acme",
			date:     "15/03/2024",
			wantSQL:  " WHERE 1=1 AND company_name LIKE ? AND filing_date = ?",
			wantArgs: []interface{}{"%Acme%", "15/03/2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := FilingFilters(tt.company, tt.date).Clause()
			if clause != tt.wantSQL {
				t.Errorf("Clause() SQL = %q, want %q", clause, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Clause() args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

// Filter values must only ever travel as bound arguments. Whatever the
// client sends, the SQL text stays one of four fixed templates.
func TestFilterValuesNeverEnterSQLText(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rendered SQL is a fixed template for any input", prop.ForAll(
		func(company, date string) bool {
			clause, args := FilingFilters(company, date).Clause()

			want := " WHERE 1=1"
			wantArgs := 0
			if company != "" {
				want += " AND company_name LIKE ?"
				wantArgs++
			}
			if date != "" {
				want += " AND filing_date = ?"
				wantArgs++
			}
			return clause == want && len(args) == wantArgs
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("placeholder count always matches bound args", prop.ForAll(
		func(company, date string) bool {
			clause, args := FilingFilters(company, date).Clause()
			return strings.Count(clause, "?") == len(args)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("company value is bound with wildcards, date verbatim", prop.ForAll(
		func(company, date string) bool {
			if company == "" || date == "" {
				return true
			}
			_, args := FilingFilters(company, date).Clause()
			return len(args) == 2 && args[0] == "%"+company+"%" && args[1] == date
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestFilterSetHostileInputsStayBound(t *testing.T) {
	hostile := []string{
		"' OR 1=1 --",
		"Robert'); DROP TABLE ipos;--",
		"%",
		"_",
		`a"b`,
		"?; DELETE FROM ipos",
	}

	for _, input := range hostile {
		clause, args := FilingFilters(input, "").Clause()
		if clause != " WHERE 1=1 AND company_name LIKE ?" {
			t.Errorf("input %q altered SQL text: %q", input, clause)
		}
		if len(args) != 1 || args[0] != "%"+input+"%" {
			t.Errorf("input %q not bound as argument: %v", input, args)
		}
	}
}

func TestFilterSetAddPreservesOrder(t *testing.T) {
	f := &FilterSet{}
	f.Add("a", "=", 1)
	f.Add("b", "LIKE", "x")
	f.Add("c", ">", 3)

	clause, args := f.Clause()
	if clause != " WHERE 1=1 AND a = ? AND b LIKE ? AND c > ?" {
		t.Errorf("Clause() = %q", clause)
	}
	if len(args) != 3 || args[0] != 1 || args[1] != "x" || args[2] != 3 {
		t.Errorf("args out of order: %v", args)
	}

	if f.Empty() {
		t.Error("Empty() = true after Add")
	}
	if (&FilterSet{}).Empty() != true {
		t.Error("Empty() = false for fresh set")
	}
}
