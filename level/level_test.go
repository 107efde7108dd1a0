package level

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLevel(t *testing.T) {
	lvl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if lvl.Name == "" {
		t.Error("default level has no name")
	}
	if len(lvl.Balls) != 2 {
		t.Errorf("balls = %d, want 2", len(lvl.Balls))
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	lvl, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def, _ := Default()
	if lvl.Name != def.Name {
		t.Errorf("name = %q, want %q", lvl.Name, def.Name)
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
name: loaded
ink_budget: 400
balls:
  - pos: {x: 100, y: 200}
    radius: 16
  - pos: {x: 300, y: 200}
    radius: 16
conveyors:
  - pos: {x: 500, y: 400}
    length: 200
    thickness: 20
    direction: -1
`
	path := filepath.Join(t.TempDir(), "lvl.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	lvl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lvl.Name != "loaded" {
		t.Errorf("name = %q, want loaded", lvl.Name)
	}
	if lvl.InkBudget != 400 {
		t.Errorf("ink budget = %f, want 400", lvl.InkBudget)
	}
	if len(lvl.Conveyors) != 1 || lvl.Conveyors[0].Direction != -1 {
		t.Errorf("conveyors = %+v", lvl.Conveyors)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Level {
		return Level{
			Name: "t",
			Balls: []BallDef{
				{Pos: Point{X: 1, Y: 1}, Radius: 10},
				{Pos: Point{X: 2, Y: 2}, Radius: 10},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Level)
		wantErr string
	}{
		{"valid", func(l *Level) {}, ""},
		{
			"one ball",
			func(l *Level) { l.Balls = l.Balls[:1] },
			"exactly 2 balls",
		},
		{
			"zero radius",
			func(l *Level) { l.Balls[0].Radius = 0 },
			"non-positive radius",
		},
		{
			"short net",
			func(l *Level) { l.Nets = []NetDef{{Points: []Point{{X: 1, Y: 1}}}} },
			"at least 2 points",
		},
		{
			"bad conveyor direction",
			func(l *Level) {
				l.Conveyors = []ConveyorDef{{Pos: Point{X: 1, Y: 1}, Length: 100, Direction: 0}}
			},
			"direction must be",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl := valid()
			tt.mutate(&lvl)
			err := lvl.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
