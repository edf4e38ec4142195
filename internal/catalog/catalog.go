package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data
var defaults embed.FS

// Item categories.
const (
	CategoryWater    = "water"
	CategoryFood     = "food"
	CategoryMedical  = "medical"
	CategoryMaterial = "material"
	CategoryTool     = "tool"
	CategoryWeapon   = "weapon"
)

// Item rarities.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

var itemCategories = map[string]bool{
	CategoryWater: true, CategoryFood: true, CategoryMedical: true,
	CategoryMaterial: true, CategoryTool: true, CategoryWeapon: true,
}

var itemRarities = map[string]bool{
	RarityCommon: true, RarityUncommon: true, RarityRare: true,
	RarityEpic: true, RarityLegendary: true,
}

// ItemDef is a static item definition. Immutable once loaded.
type ItemDef struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Category  string  `yaml:"category" json:"category"`
	Rarity    string  `yaml:"rarity" json:"rarity"`
	Weight    float64 `yaml:"weight" json:"weight"`
	Stackable bool    `yaml:"stackable" json:"stackable"`
	MaxStack  int     `yaml:"max_stack" json:"max_stack"`
}

// BuildingTemplate is a static building definition. Immutable once loaded.
type BuildingTemplate struct {
	ID               string         `yaml:"id" json:"id"`
	Name             string         `yaml:"name" json:"name"`
	Category         string         `yaml:"category" json:"category"`
	Tier             int            `yaml:"tier" json:"tier"`
	BuildTimeSeconds int            `yaml:"build_time_seconds" json:"build_time_seconds"`
	Resources        map[string]int `yaml:"resources" json:"resources"`
	MaxPerTerritory  int            `yaml:"max_per_territory" json:"max_per_territory"`
	UpgradeTo        string         `yaml:"upgrade_to,omitempty" json:"upgrade_to,omitempty"`
}

// BuildTime returns the template's build time as a duration.
func (t *BuildingTemplate) BuildTime() time.Duration {
	return time.Duration(t.BuildTimeSeconds) * time.Second
}

// Catalog holds the loaded item and building definitions. Read-only after
// Load.
type Catalog struct {
	items     map[string]ItemDef
	buildings map[string]BuildingTemplate
}

type itemsFile struct {
	Items []ItemDef `yaml:"items"`
}

type buildingsFile struct {
	Buildings []BuildingTemplate `yaml:"buildings"`
}

// LoadDefault loads the catalog definitions embedded in the binary.
func LoadDefault() (*Catalog, error) {
	sub, err := fs.Sub(defaults, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded catalog: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir loads catalog definitions from a directory containing items.yaml
// and buildings.yaml.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads and validates catalog definitions from a file system.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var items itemsFile
	if err := readYAML(fsys, "items.yaml", &items); err != nil {
		return nil, err
	}

	var buildings buildingsFile
	if err := readYAML(fsys, "buildings.yaml", &buildings); err != nil {
		return nil, err
	}

	c := &Catalog{
		items:     make(map[string]ItemDef, len(items.Items)),
		buildings: make(map[string]BuildingTemplate, len(buildings.Buildings)),
	}

	for _, def := range items.Items {
		if err := validateItem(def); err != nil {
			return nil, fmt.Errorf("item %q: %w", def.ID, err)
		}
		if _, ok := c.items[def.ID]; ok {
			return nil, fmt.Errorf("duplicate item id %q", def.ID)
		}
		c.items[def.ID] = def
	}

	for _, tpl := range buildings.Buildings {
		if err := c.validateBuilding(tpl); err != nil {
			return nil, fmt.Errorf("building %q: %w", tpl.ID, err)
		}
		if _, ok := c.buildings[tpl.ID]; ok {
			return nil, fmt.Errorf("duplicate building id %q", tpl.ID)
		}
		c.buildings[tpl.ID] = tpl
	}

	// Upgrade targets can only be checked once every template is registered.
	for _, tpl := range c.buildings {
		if tpl.UpgradeTo == "" {
			continue
		}
		if _, ok := c.buildings[tpl.UpgradeTo]; !ok {
			return nil, fmt.Errorf("building %q: unknown upgrade target %q", tpl.ID, tpl.UpgradeTo)
		}
	}

	return c, nil
}

func readYAML(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func validateItem(def ItemDef) error {
	if def.ID == "" || def.Name == "" {
		return fmt.Errorf("id and name are required")
	}
	if !itemCategories[def.Category] {
		return fmt.Errorf("unknown category %q", def.Category)
	}
	if !itemRarities[def.Rarity] {
		return fmt.Errorf("unknown rarity %q", def.Rarity)
	}
	if def.Weight < 0 {
		return fmt.Errorf("negative weight")
	}
	if def.Stackable && def.MaxStack <= 0 {
		return fmt.Errorf("stackable item needs a positive max_stack")
	}
	return nil
}

func (c *Catalog) validateBuilding(tpl BuildingTemplate) error {
	if tpl.ID == "" || tpl.Name == "" {
		return fmt.Errorf("id and name are required")
	}
	if tpl.BuildTimeSeconds <= 0 {
		return fmt.Errorf("build_time_seconds must be positive")
	}
	if tpl.MaxPerTerritory <= 0 {
		return fmt.Errorf("max_per_territory must be positive")
	}
	if len(tpl.Resources) == 0 {
		return fmt.Errorf("resource cost list is empty")
	}
	for itemID, amount := range tpl.Resources {
		if amount <= 0 {
			return fmt.Errorf("resource %q: amount must be positive", itemID)
		}
		if _, ok := c.items[itemID]; !ok {
			return fmt.Errorf("resource %q: unknown item", itemID)
		}
	}
	return nil
}

// Item returns an item definition by id.
func (c *Catalog) Item(id string) (ItemDef, bool) {
	def, ok := c.items[id]
	return def, ok
}

// Building returns a building template by id.
func (c *Catalog) Building(id string) (BuildingTemplate, bool) {
	tpl, ok := c.buildings[id]
	return tpl, ok
}

// Items returns all item definitions sorted by id.
func (c *Catalog) Items() []ItemDef {
	items := make([]ItemDef, 0, len(c.items))
	for _, def := range c.items {
		items = append(items, def)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Buildings returns all building templates sorted by id.
func (c *Catalog) Buildings() []BuildingTemplate {
	buildings := make([]BuildingTemplate, 0, len(c.buildings))
	for _, tpl := range c.buildings {
		buildings = append(buildings, tpl)
	}
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].ID < buildings[j].ID })
	return buildings
}
