package normalize

import (
	"errors"
	"testing"

	"divesurf/internal/model"
)

func TestParse_BothDialectsSameShape(t *testing.T) {
	want := model.NormalizedOrder{
		CustomerID:  "42",
		FirstName:   "Jane",
		LastName:    "Doe",
		DivingSuits: 2,
		Surfboards:  3,
	}

	web, err := Parse("42,Jane,Doe,2,3")
	if err != nil {
		t.Fatalf("web parse: %v", err)
	}
	if web != want {
		t.Fatalf("web order mismatch: %+v", web)
	}

	// Call-center field order is name,surfboards,divingSuits,customerId.
	// The customer id is non-numeric there, so compare field by field.
	cc, err := Parse("Jane Doe, 3, 2, C-42")
	if err != nil {
		t.Fatalf("callcenter parse: %v", err)
	}
	if cc.FirstName != "Jane" || cc.LastName != "Doe" || cc.DivingSuits != 2 || cc.Surfboards != 3 {
		t.Fatalf("callcenter order mismatch: %+v", cc)
	}
	if cc.CustomerID != "C-42" {
		t.Fatalf("bad customer id: %q", cc.CustomerID)
	}
}

func TestClassify(t *testing.T) {
	if d := Classify("42,Jane,Doe,2,3"); d != DialectWeb {
		t.Fatalf("numeric first field should be web, got %v", d)
	}
	if d := Classify("Jane Doe,3,2,C-42"); d != DialectCallCenter {
		t.Fatalf("name first field should be callcenter, got %v", d)
	}
	if d := Classify(""); d != DialectCallCenter {
		t.Fatalf("empty first field is not numeric, got %v", d)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"web too few fields", "42,Jane,Doe,2"},
		{"web too many fields", "42,Jane,Doe,2,3,4"},
		{"web non-numeric quantity", "42,Jane,Doe,two,3"},
		{"web negative quantity", "42,Jane,Doe,-2,3"},
		{"callcenter too few fields", "Jane Doe,3,2"},
		{"callcenter too many fields", "Jane Doe,3,2,C-42,x"},
		{"callcenter single-token name", "Jane,3,2,C-42"},
		{"callcenter non-numeric quantity", "Jane Doe,three,2,C-42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.line)
			if err == nil {
				t.Fatalf("expected error for %q", tc.line)
			}
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("want MalformedInputError, got %T: %v", err, err)
			}
			if malformed.Line != tc.line {
				t.Fatalf("error should carry the line: %q", malformed.Line)
			}
		})
	}
}

func TestParse_CallCenterNameSplitsOnFirstSpace(t *testing.T) {
	o, err := Parse("Ana Maria Silva,1,1,C-7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if o.FirstName != "Ana" || o.LastName != "Maria Silva" {
		t.Fatalf("name split mismatch: %q %q", o.FirstName, o.LastName)
	}
}
