package pricing

// VehicleClass is a static catalog entry: display data plus the rate table
// used by the quote engine. Entries are immutable and shared read-only.
type VehicleClass struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	ETAText     string  `json:"eta_text"`
	Capacity    int     `json:"capacity"`
	BaseFare    float64 `json:"base_fare"`
	IncludedKm  float64 `json:"included_km"`
	PerKm       float64 `json:"per_km"`
	PerMin      float64 `json:"per_min"`
}

// DefaultClassID is the rate table used when a quote is requested for an
// unknown class id.
const DefaultClassID = "economy"

// Catalog is the ordered, immutable set of vehicle classes.
type Catalog struct {
	classes []VehicleClass
	byID    map[string]VehicleClass
}

// NewCatalog returns the product's standard vehicle catalog.
func NewCatalog() *Catalog {
	classes := []VehicleClass{
		{
			ID:          "moto_economy",
			Name:        "IntuMoto",
			Icon:        "🏍️",
			Description: "La forma más rápida de moverte",
			ETAText:     "2-4 min",
			Capacity:    1,
			BaseFare:    3.00,
			IncludedKm:  2,
			PerKm:       1.60,
			PerMin:      0.12,
		},
		{
			ID:          "economy",
			Name:        "IntuEconomy",
			Icon:        "🚗",
			Description: "Opción económica y confiable",
			ETAText:     "3-5 min",
			Capacity:    4,
			BaseFare:    15.50,
			IncludedKm:  3,
			PerKm:       1.20,
			PerMin:      0.25,
		},
		{
			ID:          "comfort",
			Name:        "IntuComfort",
			Icon:        "🚙",
			Description: "Más espacio y comodidad",
			ETAText:     "5-8 min",
			Capacity:    4,
			BaseFare:    22.00,
			IncludedKm:  3,
			PerKm:       1.60,
			PerMin:      0.30,
		},
		{
			ID:          "premium",
			Name:        "IntuPremium",
			Icon:        "🚘",
			Description: "Vehículos de lujo",
			ETAText:     "8-12 min",
			Capacity:    4,
			BaseFare:    35.00,
			IncludedKm:  4,
			PerKm:       2.40,
			PerMin:      0.45,
		},
		{
			ID:          "xl",
			Name:        "IntuXL",
			Icon:        "🚐",
			Description: "Para grupos grandes",
			ETAText:     "10-15 min",
			Capacity:    6,
			BaseFare:    28.00,
			IncludedKm:  3,
			PerKm:       2.00,
			PerMin:      0.40,
		},
	}

	byID := make(map[string]VehicleClass, len(classes))
	for _, c := range classes {
		byID[c.ID] = c
	}
	return &Catalog{classes: classes, byID: byID}
}

// List returns the classes in display order.
func (c *Catalog) List() []VehicleClass {
	out := make([]VehicleClass, len(c.classes))
	copy(out, c.classes)
	return out
}

// Get looks up a class by id.
func (c *Catalog) Get(id string) (VehicleClass, bool) {
	cls, ok := c.byID[id]
	return cls, ok
}

// Resolve returns the class for id, or the default class's rate table when
// the id is unknown.
func (c *Catalog) Resolve(id string) VehicleClass {
	if cls, ok := c.byID[id]; ok {
		return cls
	}
	return c.byID[DefaultClassID]
}
