package model

import "github.com/google/uuid"

// DecorItem is a reusable decor preset the user can drop into a tank.
type DecorItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SpriteRef string `json:"sprite_ref"`
	Footprint int    `json:"footprint"`
	Layer     int    `json:"layer"`
}

// NewDecorItem creates a new DecorItem with a generated ID.
func NewDecorItem(name, spriteRef string, footprint, layer int) DecorItem {
	return DecorItem{
		ID:        uuid.New().String()[:8],
		Name:      name,
		SpriteRef: spriteRef,
		Footprint: footprint,
		Layer:     layer,
	}
}

// Catalog holds the user's saved decor presets.
type Catalog struct {
	Items []DecorItem `json:"items"`
}

// DefaultCatalog returns a catalog populated with the stock decor set.
func DefaultCatalog() Catalog {
	return Catalog{
		Items: []DecorItem{
			NewDecorItem("Castle", "decor/castle.png", 8, 1),
			NewDecorItem("Treasure Chest", "decor/chest.png", 4, 2),
			NewDecorItem("Coral", "decor/coral.png", 6, 1),
			NewDecorItem("Seaweed", "decor/seaweed.png", DefaultFootprint, 0),
			NewDecorItem("Rock", "decor/rock.png", 3, 0),
			NewDecorItem("Diver", "decor/diver.png", 5, 2),
		},
	}
}

// FindByID returns a pointer to the item with the given ID, or nil.
func (c *Catalog) FindByID(id string) *DecorItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first item with the given name, or nil.
func (c *Catalog) FindByName(name string) *DecorItem {
	for i := range c.Items {
		if c.Items[i].Name == name {
			return &c.Items[i]
		}
	}
	return nil
}

// Names returns the item names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Items))
	for i, it := range c.Items {
		names[i] = it.Name
	}
	return names
}
