package showcase

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/avikajoshi/portfolio/backend/internal/model/project"
)

// Per-frame animation constants.
const (
	SceneYawStep    = 0.003
	CameraFollow    = 3.0
	CameraEase      = 0.05
	ShapeEase       = 0.1
	HoverScale      = 1.3
	SelectedScale   = 1.2
	HoverOpacity    = 1.0
	SelectedOpacity = 0.9
	IdleOpacity     = 0.8
	bobAmplitude    = 0.003
)

// Shape is the animated state of one project solid.
type Shape struct {
	ProjectID int              `json:"id"`
	Geometry  project.Geometry `json:"geometry"`
	Position  [3]float64       `json:"position"`
	Rotation  [2]float64       `json:"rotation"`
	Scale     float64          `json:"scale"`
	Opacity   float64          `json:"opacity"`

	baseScale float64
}

// Frame is a snapshot of the scene after an Advance.
type Frame struct {
	Elapsed  int64      `json:"elapsedMs"`
	Yaw      float64    `json:"yaw"`
	Camera   [3]float64 `json:"camera"`
	Hovered  int        `json:"hovered,omitempty"`
	Selected int        `json:"selected,omitempty"`
	Shapes   []Shape    `json:"shapes"`
}

// SelectFunc is called with the selected project, or nil when the selection is cleared.
type SelectFunc func(p *project.Project)

// Scene is the showcase state machine. It is safe for concurrent use.
type Scene struct {
	mu       sync.Mutex
	projects []project.Project
	shapes   []Shape
	camera   Camera
	pointer  [2]float64
	yaw      float64
	clock    time.Duration
	hovered  int
	selected int
	onSelect SelectFunc
}

// NewScene builds a scene with one shape per project, in catalog order.
func NewScene(projects []project.Project, onSelect SelectFunc) *Scene {
	shapes := make([]Shape, len(projects))
	for i, p := range projects {
		shapes[i] = Shape{
			ProjectID: p.ID,
			Geometry:  p.Geometry,
			Position:  p.Position,
			Scale:     p.Scale,
			Opacity:   IdleOpacity,
			baseScale: p.Scale,
		}
	}
	return &Scene{
		projects: append([]project.Project(nil), projects...),
		shapes:   shapes,
		camera:   DefaultCamera(),
		onSelect: onSelect,
	}
}

// targetsLocked returns the pickable bounds in world space.
func (s *Scene) targetsLocked() []Target {
	rot := mgl64.HomogRotate3DY(s.yaw)
	targets := make([]Target, len(s.shapes))
	for i, sh := range s.shapes {
		local := mgl64.Vec3{sh.Position[0], sh.Position[1], sh.Position[2]}
		targets[i] = Target{
			ID:     sh.ProjectID,
			Center: rot.Mul4x1(local.Vec4(1)).Vec3(),
			Radius: sh.Scale * boundFactor(sh.Geometry),
		}
	}
	return targets
}

func (s *Scene) pickLocked(x, y float64) int {
	origin, dir := s.camera.Ray(x, y)
	id, ok := Pick(origin, dir, s.targetsLocked())
	if !ok {
		return 0
	}
	return id
}

// PointerMove records the pointer in normalized device coordinates and updates the hover.
// It returns the hovered project id, 0 for none.
func (s *Scene) PointerMove(x, y float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = [2]float64{x, y}
	s.hovered = s.pickLocked(x, y)
	return s.hovered
}

// Click selects the project under the pointer, or clears the selection on a miss.
func (s *Scene) Click(x, y float64) int {
	s.mu.Lock()
	id := s.pickLocked(x, y)
	s.selected = id
	p := s.projectLocked(id)
	cb := s.onSelect
	s.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return id
}

// Toggle selects id, or clears the selection if id is already selected. Used by the legend.
func (s *Scene) Toggle(id int) int {
	s.mu.Lock()
	if s.selected == id || s.projectLocked(id) == nil {
		s.selected = 0
	} else {
		s.selected = id
	}
	selected := s.selected
	p := s.projectLocked(selected)
	cb := s.onSelect
	s.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return selected
}

func (s *Scene) projectLocked(id int) *project.Project {
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p
		}
	}
	return nil
}

// Advance moves the animation forward by elapsed and returns the resulting frame.
func (s *Scene) Advance(elapsed time.Duration) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := Frames(elapsed)
	s.clock += elapsed
	s.yaw += SceneYawStep * frames
	ms := float64(s.clock.Milliseconds())

	for i := range s.shapes {
		sh := &s.shapes[i]
		fi := float64(i)
		sh.Rotation[0] += (0.01 + fi*0.002) * frames
		sh.Rotation[1] += (0.008 + fi*0.003) * frames
		sh.Position[1] += math.Sin(ms*0.001+fi) * bobAmplitude * frames

		targetScale, targetOpacity := sh.baseScale, IdleOpacity
		switch sh.ProjectID {
		case s.hovered:
			targetScale, targetOpacity = sh.baseScale*HoverScale, HoverOpacity
		case s.selected:
			targetScale, targetOpacity = sh.baseScale*SelectedScale, SelectedOpacity
		}
		sh.Scale = Ease(sh.Scale, targetScale, ShapeEase, elapsed)
		sh.Opacity = Ease(sh.Opacity, targetOpacity, ShapeEase, elapsed)
	}

	s.camera.Position[0] = Ease(s.camera.Position[0], s.pointer[0]*CameraFollow, CameraEase, elapsed)
	s.camera.Position[1] = Ease(s.camera.Position[1], s.pointer[1]*CameraFollow, CameraEase, elapsed)

	return s.frameLocked()
}

// Snapshot returns the current frame without advancing time.
func (s *Scene) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Scene) frameLocked() Frame {
	return Frame{
		Elapsed:  s.clock.Milliseconds(),
		Yaw:      s.yaw,
		Camera:   [3]float64(s.camera.Position),
		Hovered:  s.hovered,
		Selected: s.selected,
		Shapes:   append([]Shape(nil), s.shapes...),
	}
}
