package catalog_test

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/domain/models"
)

func rec(name, desc string, tags ...string) models.Record {
	return models.Record{ID: primitive.NewObjectID(), Name: name, Description: desc, Tags: tags}
}

func names(rs []models.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func sampleRecords() []models.Record {
	return []models.Record{
		rec("Algo Notes", "sorting and graphs", "Notes"),
		rec("OS Notice", "exam schedule", "Notices"),
		rec("DBMS Paper 2023", "", "Previous Papers"),
		rec("Compiler lab", "ALGOrithm design lab", "Lab Reports", "Notes"),
		rec("Untagged", ""),
	}
}

func TestVisibleRecords_Search(t *testing.T) {
	all := sampleRecords()
	tests := []struct {
		q    string
		want []string
	}{
		{"", []string{"Algo Notes", "OS Notice", "DBMS Paper 2023", "Compiler lab", "Untagged"}},
		{"algo", []string{"Algo Notes", "Compiler lab"}},
		{"ALGO", []string{"Algo Notes", "Compiler lab"}},
		{"schedule", []string{"OS Notice"}},
		{"nothing matches", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			s := catalog.NewStore()
			s.ReplaceAll(all)
			s.SetSearchText(tt.q)
			got := names(s.VisibleRecords())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("search %q: got %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestVisibleRecords_TagsAreOR(t *testing.T) {
	s := catalog.NewStore()
	s.ReplaceAll(sampleRecords())

	s.ToggleTag("Notes")
	if got, want := names(s.VisibleRecords()), []string{"Algo Notes", "Compiler lab"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Notes: got %v, want %v", got, want)
	}

	s.ToggleTag("Notices")
	if got, want := names(s.VisibleRecords()), []string{"Algo Notes", "OS Notice", "Compiler lab"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Notes|Notices: got %v, want %v", got, want)
	}

	s.ToggleTag("Unknown")
	if got := len(s.VisibleRecords()); got != 3 {
		t.Errorf("adding an unmatched tag should not narrow the result, got %d", got)
	}
}

func TestVisibleRecords_EmptyTagSetMatchesAll(t *testing.T) {
	s := catalog.NewStore()
	s.ReplaceAll(sampleRecords())
	if got := len(s.VisibleRecords()); got != 5 {
		t.Errorf("got %d visible, want 5", got)
	}
}

func TestToggleTag_Involution(t *testing.T) {
	s := catalog.NewStore()
	s.ToggleTag("MST")
	s.ToggleTag("Notes")
	before := s.ActiveTags()

	for _, tag := range []string{"Notes", "Assignments", "MST"} {
		s.ToggleTag(tag)
		s.ToggleTag(tag)
		if got := s.ActiveTags(); !reflect.DeepEqual(got, before) {
			t.Errorf("toggle %q twice: got %v, want %v", tag, got, before)
		}
	}
}

func TestActiveTags_IgnoresSelectionOrder(t *testing.T) {
	a := catalog.NewStore()
	a.ToggleTag("Notes")
	a.ToggleTag("MST")

	b := catalog.NewStore()
	b.ToggleTag("MST")
	b.ToggleTag("Notes")
	b.ToggleTag("Notes")
	b.ToggleTag("Notes")

	want := []string{"MST", "Notes"}
	if got := a.ActiveTags(); !reflect.DeepEqual(got, want) {
		t.Errorf("a: got %v, want %v", got, want)
	}
	if got := b.ActiveTags(); !reflect.DeepEqual(got, want) {
		t.Errorf("b: got %v, want %v", got, want)
	}
}

func TestReplaceAll_EmptyClearsRegardlessOfFilters(t *testing.T) {
	s := catalog.NewStore()
	s.ReplaceAll(sampleRecords())
	s.SetSearchText("algo")
	s.ToggleTag("Notes")

	s.ReplaceAll(nil)
	if got := s.VisibleRecords(); len(got) != 0 {
		t.Errorf("got %d visible after ReplaceAll(nil), want 0", len(got))
	}
	if s.SearchText() != "algo" || !s.IsActive("Notes") {
		t.Error("filter state should survive ReplaceAll")
	}
}

func TestVisibleRecords_Idempotent(t *testing.T) {
	s := catalog.NewStore()
	s.ReplaceAll(sampleRecords())
	s.SetSearchText("o")
	s.ToggleTag("Notes")

	first := s.VisibleRecords()
	second := s.VisibleRecords()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated reads differ: %v vs %v", names(first), names(second))
	}
}

func TestReplaceAll_CopiesInput(t *testing.T) {
	in := sampleRecords()
	s := catalog.NewStore()
	s.ReplaceAll(in)
	in[0].Name = "mutated"
	if r := s.VisibleRecords()[0]; r.Name != "Algo Notes" {
		t.Errorf("store aliased caller slice, got %q", r.Name)
	}
}

func TestScenario_SearchThenTags(t *testing.T) {
	s := catalog.NewStore()
	s.ReplaceAll([]models.Record{
		rec("Algo Notes", "", "Notes"),
		rec("OS Notice", "", "Notices"),
	})

	s.SetSearchText("algo")
	if got, want := names(s.VisibleRecords()), []string{"Algo Notes"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("step 1: got %v, want %v", got, want)
	}

	// Search still applies, so nothing is left once only Notices is active.
	s.ToggleTag("Notices")
	if got := s.VisibleRecords(); len(got) != 0 {
		t.Fatalf("step 2a: got %v, want none", names(got))
	}
	s.SetSearchText("")
	if got, want := names(s.VisibleRecords()), []string{"OS Notice"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("step 2: got %v, want %v", got, want)
	}

	s.SetSearchText("algo")
	s.ToggleTag("Notices")
	if got, want := names(s.VisibleRecords()), []string{"Algo Notes"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("step 3: got %v, want %v", got, want)
	}

	s.SetSearchText("")
	if got, want := names(s.VisibleRecords()), []string{"Algo Notes", "OS Notice"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("step 4: got %v, want %v", got, want)
	}
}

func TestSubstringPredicate(t *testing.T) {
	s := catalog.NewStore(catalog.WithChipPredicate(catalog.MatchesAnySubstring))
	s.ReplaceAll([]models.Record{
		rec("DBMS 2023", "", "Previous Papers"),
		rec("OS", "paper from 2022", "Previous Papers"),
		rec("MST-1 Maths", "", "MST"),
		rec("mst-1 physics", "", "MST"),
	})

	s.ToggleTag("2023")
	s.ToggleTag("2022")
	if got, want := names(s.VisibleRecords()), []string{"DBMS 2023", "OS"}; !reflect.DeepEqual(got, want) {
		t.Errorf("years: got %v, want %v", got, want)
	}

	s.ToggleTag("2023")
	s.ToggleTag("2022")
	s.ToggleTag("MST-1")
	if got, want := names(s.VisibleRecords()), []string{"MST-1 Maths"}; !reflect.DeepEqual(got, want) {
		t.Errorf("semesters are case sensitive: got %v, want %v", got, want)
	}
}

func TestPredicatesAreDistinct(t *testing.T) {
	r := rec("Notes on 2023 syllabus", "", "Previous Papers")
	if catalog.MatchesAnyTag(r, []string{"2023"}) {
		t.Error("tag predicate should not look at the name")
	}
	if !catalog.MatchesAnySubstring(r, []string{"2023"}) {
		t.Error("substring predicate should match the name")
	}
	if catalog.MatchesAnySubstring(r, []string{"Previous Papers"}) {
		t.Error("substring predicate should not look at tags")
	}
}
