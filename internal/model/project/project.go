package project

import "fmt"

// Vec3 is a position in showcase world space.
type Vec3 [3]float64

// Project is one decorative showcase shape and the portfolio entry it stands for.
type Project struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Color       uint32   `json:"color"`
	Position    Vec3     `json:"position"`
	Scale       float64  `json:"scale"`
	Geometry    Geometry `json:"geometry"`
}

// HexColor renders the color as #rrggbb.
func (p Project) HexColor() string {
	return fmt.Sprintf("#%06x", p.Color&0xffffff)
}

// Geometry names the wireframe solid used for a project.
type Geometry string

const (
	Dodecahedron Geometry = "dodecahedron"
	Icosahedron  Geometry = "icosahedron"
	Octahedron   Geometry = "octahedron"
	Tetrahedron  Geometry = "tetrahedron"
	Torus        Geometry = "torus"
	Sphere       Geometry = "sphere"
)

var geometryCycle = []Geometry{Dodecahedron, Icosahedron, Octahedron, Tetrahedron, Torus, Sphere}

// GeometryFor picks the solid for the project at index i of the catalog.
func GeometryFor(i int) Geometry {
	return geometryCycle[i%len(geometryCycle)]
}

// Seed provides the showcase catalog.
func Seed() []Project {
	items := []Project{
		{
			ID:          1,
			Title:       "AIRA Platform",
			Color:       0x00d9ff,
			Description: "Offline B2B AI Calling agent built on faster-whisper for fast local transcription, TinyLlama via Ollama for lightweight, intelligent dialogue, Coqui TTS for lifelike, low-latency speech, Asterisk for real SIP-based call handling (designed for production use)",
			Position:    Vec3{-3, 2, 0},
			Scale:       1.2,
		},
		{
			ID:          2,
			Title:       "MIT Framework",
			Color:       0x8b5cf6,
			Description: "Production research framework",
			Position:    Vec3{3, 1, -1},
			Scale:       1.0,
		},
		{
			ID:          3,
			Title:       "Climate AI",
			Color:       0x00ff88,
			Description: "Environmental data processing",
			Position:    Vec3{0, -2, 1},
			Scale:       1.4,
		},
		{
			ID:          4,
			Title:       "SmartCV",
			Color:       0xffff00,
			Description: "Computer vision platform",
			Position:    Vec3{-2, -1, -2},
			Scale:       0.8,
		},
		{
			ID:          5,
			Title:       "BioAI",
			Color:       0xff0080,
			Description: "Medical diagnostics AI",
			Position:    Vec3{2, 0, 2},
			Scale:       1.1,
		},
		{
			ID:          6,
			Title:       "EduAI",
			Color:       0xff6600,
			Description: "Personalized learning AI",
			Position:    Vec3{0, 3, -1},
			Scale:       0.9,
		},
	}
	for i := range items {
		items[i].Geometry = GeometryFor(i)
	}
	return items
}
