package schema

// The six mirrored catalogs. Field lists and filter whitelists track the
// upstream record shapes; relation fields hold upstream resource URLs and are
// stored as opaque strings.

// Films describes the film catalog.
var Films = Schema{
	Name:  "film",
	Route: "films",
	Fields: []Field{
		{Name: "title", Type: TypeString},
		{Name: "episode_id", Type: TypeNumber},
		{Name: "opening_crawl", Type: TypeString},
		{Name: "director", Type: TypeString},
		{Name: "producer", Type: TypeString},
		{Name: "release_date", Type: TypeDate},
	},
	Relations:    []string{"species", "starships", "vehicles", "characters", "planets"},
	NaturalKey:   "title",
	SearchField:  "title",
	FilterFields: []string{"episode_id", "director"},
	UpstreamPath: "/films/",
}

// People describes the person catalog.
var People = Schema{
	Name:  "person",
	Route: "people",
	Fields: []Field{
		{Name: "name", Type: TypeString},
		{Name: "height", Type: TypeString},
		{Name: "mass", Type: TypeString},
		{Name: "hair_color", Type: TypeString},
		{Name: "skin_color", Type: TypeString},
		{Name: "eye_color", Type: TypeString},
		{Name: "birth_year", Type: TypeString},
		{Name: "gender", Type: TypeString},
		{Name: "homeworld", Type: TypeString},
	},
	Relations:    []string{"films", "species", "vehicles", "starships"},
	NaturalKey:   "name",
	SearchField:  "name",
	FilterFields: []string{"height", "mass", "hair_color", "skin_color", "eye_color", "gender"},
	UpstreamPath: "/people/",
}

// Planets describes the planet catalog.
var Planets = Schema{
	Name:  "planet",
	Route: "planets",
	Fields: []Field{
		{Name: "name", Type: TypeString},
		{Name: "diameter", Type: TypeString},
		{Name: "rotation_period", Type: TypeString},
		{Name: "orbital_period", Type: TypeString},
		{Name: "gravity", Type: TypeString},
		{Name: "population", Type: TypeString},
		{Name: "climate", Type: TypeString},
		{Name: "terrain", Type: TypeString},
		{Name: "surface_water", Type: TypeString},
	},
	Relations:    []string{"residents", "films"},
	NaturalKey:   "name",
	SearchField:  "name",
	FilterFields: []string{"diameter", "population"},
	UpstreamPath: "/planets/",
}

// Species describes the species catalog.
var Species = Schema{
	Name:  "species",
	Route: "species",
	Fields: []Field{
		{Name: "name", Type: TypeString},
		{Name: "classification", Type: TypeString},
		{Name: "designation", Type: TypeString},
		{Name: "average_height", Type: TypeString},
		{Name: "average_lifespan", Type: TypeString},
		{Name: "eye_colors", Type: TypeString},
		{Name: "hair_colors", Type: TypeString},
		{Name: "skin_colors", Type: TypeString},
		{Name: "language", Type: TypeString},
		{Name: "homeworld", Type: TypeString},
	},
	Relations:    []string{"people", "films"},
	NaturalKey:   "name",
	SearchField:  "name",
	FilterFields: []string{"classification", "designation", "language"},
	UpstreamPath: "/species/",
}

// Starships describes the starship catalog.
var Starships = Schema{
	Name:  "starship",
	Route: "starships",
	Fields: []Field{
		{Name: "name", Type: TypeString},
		{Name: "model", Type: TypeString},
		{Name: "starship_class", Type: TypeString},
		{Name: "manufacturer", Type: TypeString},
		{Name: "cost_in_credits", Type: TypeString},
		{Name: "length", Type: TypeString},
		{Name: "crew", Type: TypeString},
		{Name: "passengers", Type: TypeString},
		{Name: "max_atmosphering_speed", Type: TypeString},
		{Name: "hyperdrive_rating", Type: TypeString},
		{Name: "MGLT", Type: TypeString},
		{Name: "cargo_capacity", Type: TypeString},
		{Name: "consumables", Type: TypeString},
	},
	Relations:    []string{"films", "pilots"},
	NaturalKey:   "name",
	SearchField:  "name",
	FilterFields: []string{"model", "starship_class", "manufacturer"},
	UpstreamPath: "/starships/",
}

// Vehicles describes the vehicle catalog.
var Vehicles = Schema{
	Name:  "vehicle",
	Route: "vehicles",
	Fields: []Field{
		{Name: "name", Type: TypeString},
		{Name: "model", Type: TypeString},
		{Name: "vehicle_class", Type: TypeString},
		{Name: "manufacturer", Type: TypeString},
		{Name: "length", Type: TypeString},
		{Name: "cost_in_credits", Type: TypeString},
		{Name: "crew", Type: TypeString},
		{Name: "passengers", Type: TypeString},
		{Name: "max_atmosphering_speed", Type: TypeString},
		{Name: "cargo_capacity", Type: TypeString},
		{Name: "consumables", Type: TypeString},
	},
	Relations:    []string{"films", "pilots"},
	NaturalKey:   "name",
	SearchField:  "name",
	FilterFields: []string{"model", "vehicle_class", "manufacturer"},
	UpstreamPath: "/vehicles/",
}

var (
	all      []Schema
	registry = make(map[string]Schema)
)

func init() {
	for _, s := range []*Schema{&Films, &People, &Planets, &Species, &Starships, &Vehicles} {
		s.SortFields = sortFields(s.Fields)
		all = append(all, *s)
		registry[s.Route] = *s
	}
}

// All returns every registered schema in declaration order.
func All() []Schema {
	out := make([]Schema, len(all))
	copy(out, all)
	return out
}

// Lookup returns the schema registered under the given route name.
func Lookup(route string) (Schema, bool) {
	s, ok := registry[route]
	return s, ok
}
