package inmemoryscene

import (
	"fmt"
	"strings"
	"sync"

	"cogentcore.org/core/math32"
	"github.com/google/uuid"

	"github.com/vk/crowdplace/internal/scene"
)

// Object is one scene object registered with the backend.
type Object struct {
	Name      string
	Transform scene.Transform
	Mesh      *scene.Mesh
	// Armature marks the object as a rig when duplicated as a group member.
	Armature bool
}

// Duplicate records one DuplicateObject or DuplicateGroup member call.
type Duplicate struct {
	Handle   scene.Handle
	Source   string
	Deferred bool
}

// Link records one LinkExternalGroup call.
type Link struct {
	SourcePath    string
	Group         string
	RigObject     string
	ConstrainBone string
	Object        scene.Handle
	Rig           scene.Handle
}

// Attachment records one AttachToBone call.
type Attachment struct {
	Child  scene.Handle
	Parent scene.Handle
	Bone   string
}

type placementGroup struct {
	kind   scene.GroupKind
	frozen bool
}

// Scene is a map-backed scene.Backend.
type Scene struct {
	mu sync.Mutex

	objects   map[string]*Object
	groups    map[string][]string
	materials []string
	pgroups   map[string]*placementGroup

	// failures maps an operation name to an error injected for tests.
	failures map[string]error

	// Recorded construction calls, in order.
	Duplicates  []Duplicate
	Links       []Link
	Attachments []Attachment
	Transforms  map[scene.Handle]scene.Transform
	Materials   map[scene.Handle]map[string]string
	Agents      []scene.Agent
	GroupResets []string
}

// New returns an empty backend.
func New() *Scene {
	return &Scene{
		objects:    make(map[string]*Object),
		groups:     make(map[string][]string),
		pgroups:    make(map[string]*placementGroup),
		failures:   make(map[string]error),
		Transforms: make(map[scene.Handle]scene.Transform),
		Materials:  make(map[scene.Handle]map[string]string),
	}
}

// AddObject registers a scene object.
func (s *Scene) AddObject(o Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := o
	s.objects[o.Name] = &obj
}

// AddGroup registers a scene group with the given member object names.
func (s *Scene) AddGroup(name string, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = append([]string(nil), members...)
}

// AddMaterials registers material names.
func (s *Scene) AddMaterials(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append(s.materials, names...)
}

// AddPlacementGroup registers a placement group with the host registry.
func (s *Scene) AddPlacementGroup(name string, kind scene.GroupKind, frozen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pgroups[name] = &placementGroup{kind: kind, frozen: frozen}
}

// FailWith injects an error for the named operation ("duplicateObject",
// "duplicateGroup", "linkExternalGroup", "registerAgent", "resetGroup").
func (s *Scene) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func newHandle(source string) scene.Handle {
	return scene.Handle(source + "#" + uuid.NewString()[:8])
}

func (s *Scene) ObjectExists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

func (s *Scene) GroupExists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groups[name]
	return ok
}

func (s *Scene) HasMesh(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[name]
	return ok && o.Mesh != nil
}

func (s *Scene) ObjectTransform(name string) scene.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objects[name]; ok {
		return o.Transform
	}
	return scene.Identity()
}

func (s *Scene) ObjectMesh(name string) (*scene.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[name]
	if !ok || o.Mesh == nil {
		return nil, fmt.Errorf("object %q has no mesh data", name)
	}
	return o.Mesh, nil
}

func (s *Scene) ObjectBounds(name string) math32.Box3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[name]
	if !ok {
		return math32.B3Empty()
	}
	b := math32.B3Empty()
	if o.Mesh != nil {
		for _, v := range o.Mesh.Vertices {
			b.ExpandByPoint(o.Transform.Apply(v))
		}
		return b
	}
	// Objects without mesh data occupy a unit cube scaled by their
	// transform.
	half := math32.Vec3(0.5, 0.5, 0.5).MulScalar(o.Transform.Scale)
	b.SetFromCenterAndSize(o.Transform.Pos, half.MulScalar(2))
	return b
}

func (s *Scene) GroupMembers(group string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.groups[group]...)
}

func (s *Scene) MaterialsWithPrefix(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.materials {
		if strings.HasPrefix(m, prefix) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Scene) IsGroupFrozen(group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.pgroups[group]
	return ok && g.frozen
}

func (s *Scene) PlacementGroupKind(group string) scene.GroupKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.pgroups[group]; ok {
		return g.kind
	}
	return ""
}

func (s *Scene) ResetGroup(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["resetGroup"]; err != nil {
		return err
	}
	s.GroupResets = append(s.GroupResets, group)
	return nil
}

func (s *Scene) CreatePlacementGroup(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pgroups[group]; !ok {
		s.pgroups[group] = &placementGroup{kind: scene.GroupAuto}
	}
	return nil
}

func (s *Scene) DuplicateObject(name string, deferred bool) (scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["duplicateObject"]; err != nil {
		return scene.Nil, err
	}
	if _, ok := s.objects[name]; !ok {
		return scene.Nil, fmt.Errorf("object not found: %q", name)
	}
	h := newHandle(name)
	s.Duplicates = append(s.Duplicates, Duplicate{Handle: h, Source: name, Deferred: deferred})
	return h, nil
}

func (s *Scene) DuplicateGroup(group string, deferred bool) (scene.Handle, []scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["duplicateGroup"]; err != nil {
		return scene.Nil, nil, err
	}
	members, ok := s.groups[group]
	if !ok {
		return scene.Nil, nil, fmt.Errorf("group not found: %q", group)
	}

	var handles []scene.Handle
	top := scene.Nil
	lowest := math32.Inf(1)
	var lowestHandle scene.Handle
	for _, name := range members {
		h := newHandle(name)
		handles = append(handles, h)
		s.Duplicates = append(s.Duplicates, Duplicate{Handle: h, Source: name, Deferred: deferred})
		o := s.objects[name]
		if o == nil {
			continue
		}
		if o.Armature {
			top = h
		}
		if o.Transform.Pos.Z < lowest {
			lowest = o.Transform.Pos.Z
			lowestHandle = h
		}
	}
	if top == scene.Nil {
		// No armature in the group: anchor at the lowest member.
		top = scene.Handle("anchor@" + string(lowestHandle))
	}
	return top, handles, nil
}

func (s *Scene) LinkExternalGroup(sourcePath, group, rigObject, constrainBone string) (scene.Handle, scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["linkExternalGroup"]; err != nil {
		return scene.Nil, scene.Nil, err
	}
	l := Link{
		SourcePath:    sourcePath,
		Group:         group,
		RigObject:     rigObject,
		ConstrainBone: constrainBone,
		Object:        newHandle(group),
		Rig:           newHandle(rigObject),
	}
	s.Links = append(s.Links, l)
	return l.Object, l.Rig, nil
}

func (s *Scene) AttachToBone(child, parent scene.Handle, bone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attachments = append(s.Attachments, Attachment{Child: child, Parent: parent, Bone: bone})
	return nil
}

func (s *Scene) SetTransform(h scene.Handle, t scene.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transforms[h] = t
	return nil
}

func (s *Scene) ApplyMaterials(h scene.Handle, subs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]string, len(subs))
	for k, v := range subs {
		cp[k] = v
	}
	s.Materials[h] = cp
	return nil
}

func (s *Scene) RegisterAgent(a scene.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["registerAgent"]; err != nil {
		return err
	}
	s.Agents = append(s.Agents, a)
	return nil
}
