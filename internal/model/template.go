package model

import (
	"time"

	"github.com/google/uuid"
)

// LayoutTemplate is a reusable tank arrangement. It captures object
// positions and world settings but no owner.
type LayoutTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Objects     []PlacedObject `json:"objects"`
	Settings    WorldSettings  `json:"settings"`
}

// NewLayoutTemplate creates a new template from the given layout data.
// Owner ids are stripped so the template can be applied to any tank.
func NewLayoutTemplate(name, description string, objects []PlacedObject, settings WorldSettings) LayoutTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return LayoutTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Objects:     copyObjects(objects, ""),
		Settings:    settings,
	}
}

// ToLayout creates a new TankLayout for owner from this template.
// Objects get fresh IDs so they are independent of the template.
func (t LayoutTemplate) ToLayout(name, owner string) TankLayout {
	objects := copyObjects(t.Objects, owner)
	for i := range objects {
		objects[i].ID = NewObjectID()
	}
	return TankLayout{
		Name:     name,
		OwnerID:  owner,
		Settings: t.Settings,
		Objects:  objects,
	}
}

// TemplateStore holds a collection of layout templates.
type TemplateStore struct {
	Templates []LayoutTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []LayoutTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t LayoutTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns a list of template names.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// copyObjects returns a copy of objects with OwnerID set to owner and the
// lifecycle state reset.
func copyObjects(objects []PlacedObject, owner string) []PlacedObject {
	if objects == nil {
		return []PlacedObject{}
	}
	cp := make([]PlacedObject, len(objects))
	copy(cp, objects)
	for i := range cp {
		cp[i].OwnerID = owner
		cp[i].State = StateUnplaced
	}
	return cp
}
