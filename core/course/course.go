package course

import (
	"fmt"
	"strings"
)

type Level string

const (
	All          Level = "Todos"
	Beginner     Level = "Iniciante"
	Intermediate Level = "Intermediário"
	Advanced     Level = "Avançado"
)

// ParseLevel maps a selector value to a Level. The empty string selects all
// levels.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "todos", "all":
		return All, nil
	case "iniciante", "beginner":
		return Beginner, nil
	case "intermediário", "intermediario", "intermediate":
		return Intermediate, nil
	case "avançado", "avancado", "advanced":
		return Advanced, nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

type Course struct {
	ID       string   `json:"id" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Short    string   `json:"short" validate:"required"`
	Price    float64  `json:"price" validate:"gte=0"`
	Level    Level    `json:"level" validate:"oneof=Iniciante Intermediário Avançado"`
	Lessons  int      `json:"lessons" validate:"gt=0"`
	Duration string   `json:"duration" validate:"required"`
	Tags     []string `json:"tags"`
}

var seed = []Course{
	{
		ID:       "c1",
		Title:    "Lógica de Programação - Do Zero ao Avançado",
		Short:    "Aprenda pensamento lógico, algoritmos e estruturas de controle.",
		Price:    49.0,
		Level:    Beginner,
		Lessons:  28,
		Duration: "12h",
		Tags:     []string{"lógica", "algoritmo", "iniciante"},
	},
	{
		ID:       "c2",
		Title:    "Python para Lógica e Automação",
		Short:    "Use Python para traduzir algoritmos em código e automatizar tarefas.",
		Price:    69.0,
		Level:    Intermediate,
		Lessons:  35,
		Duration: "18h",
		Tags:     []string{"python", "automação"},
	},
	{
		ID:       "c3",
		Title:    "Estruturas de Dados e Algoritmos",
		Short:    "Listas, pilhas, filas, árvores e como pensar em eficiência.",
		Price:    79.0,
		Level:    Advanced,
		Lessons:  40,
		Duration: "22h",
		Tags:     []string{"algoritmos", "estruturas"},
	},
	{
		ID:       "c4",
		Title:    "JavaScript: Lógica aplicada ao Frontend",
		Short:    "Aprenda a aplicar lógica em problemas reais do frontend com JS.",
		Price:    59.0,
		Level:    Intermediate,
		Lessons:  30,
		Duration: "15h",
		Tags:     []string{"javascript", "frontend"},
	},
}

// Catalog returns a copy of the seeded courses.
func Catalog() []Course {
	out := make([]Course, len(seed))
	for i, c := range seed {
		c.Tags = append([]string(nil), c.Tags...)
		out[i] = c
	}
	return out
}
