package pattern

import (
	"testing"
)

func TestCandidatesFirst(t *testing.T) {
	candidates := NewCandidates(
		`CURSO ACADÉMICO\s+(\d{4}-\d{4})`,
		`(?i)para\s+el\s+curso\s+(\d{4}-\d{4})`,
		`(?i)curso.*?(\d{4}-\d{4})`,
	)

	tests := []struct {
		name          string
		text          string
		wantCandidate string
		wantYear      string
		wantOK        bool
	}{
		{"first wins", "BECAS PARA EL CURSO ACADÉMICO 2023-2024", "c0", "2023-2024", true},
		{"second", "becas para el curso 2022-2023 destinadas", "c1", "2022-2023", true},
		{"loosest", "el curso que empieza en 2021-2022", "c2", "2021-2022", true},
		{"none", "sin año", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := candidates.First(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("First() ok = %v, want %v", ok, tt.wantOK)
			}
			if m.Candidate != tt.wantCandidate {
				t.Errorf("Candidate = %q, want %q", m.Candidate, tt.wantCandidate)
			}
			if m.Group(1) != tt.wantYear {
				t.Errorf("Group(1) = %q, want %q", m.Group(1), tt.wantYear)
			}
		})
	}
}

func TestCandidatesFirstAll(t *testing.T) {
	candidates := NewCandidates(
		`Familias\s+de\s+(\p{L}+)\s+miembros?:\s*(\S+)`,
		`(\d)\s+miembros?:\s*(\S+)`,
	)

	text := "Familias de un miembro: 14.112,00\nFamilias de dos miembros: 24.089,00\n3 miembros: 32.697,00"
	matches := candidates.FirstAll(text)
	if len(matches) != 2 {
		t.Fatalf("FirstAll() = %d matches, want 2 (first candidate only)", len(matches))
	}
	if matches[1].Group(1) != "dos" || matches[1].Group(2) != "24.089,00" {
		t.Errorf("second match groups = %v", matches[1].Groups)
	}

	matches = candidates.FirstAll("4 miembros: 38.831,00")
	if len(matches) != 1 || matches[0].Candidate != "c1" {
		t.Errorf("fallback candidate not used: %+v", matches)
	}
}

func TestCandidatesEach(t *testing.T) {
	candidates := NewCandidates(`uno`, `dos`, `tres`)
	matches := candidates.Each("tres y uno")
	if len(matches) != 2 || matches[0].Candidate != "c0" || matches[1].Candidate != "c2" {
		t.Errorf("Each() = %+v", matches)
	}
}

func TestMatchGroupOutOfRange(t *testing.T) {
	m := Match{Groups: []string{"all"}}
	if m.Group(3) != "" || m.Group(-1) != "" {
		t.Error("Group() out of range should be empty")
	}
}

func TestNewCandidatesPanicsOnBadPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCandidates() should panic on invalid regex")
		}
	}()
	NewCandidates(`(`)
}
