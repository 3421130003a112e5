package config

// DefaultTiles are the base layers offered when none are configured: a
// street map and a terrain map suited to mountain field sites.
var DefaultTiles = []TileLayer{
	{
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		MaxZoom:     19,
	},
	{
		Name:        "OpenTopoMap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors, SRTM | &copy; OpenTopoMap",
		MaxZoom:     17,
	},
}

// DefaultConfig returns a Config with sensible defaults, centered on the
// northern Japan Alps study area.
func DefaultConfig() *Config {
	return &Config{
		Database: "data/bearmap.db",
		AboutMD:  "ABOUT.md",
		Map: MapConfig{
			Title:     "Bear Deterrence Map",
			CenterLat: 36.5606,
			CenterLng: 137.7513,
			Zoom:      13,
			Tiles:     DefaultTiles,
		},
		Draw: DrawConfig{
			Position:     "topleft",
			Export:       true,
			SaveToFile:   true,
			ShowGeometry: true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8501,
		},
		Import: ImportConfig{
			DevicesCSV: "data/deterrent_devices.csv",
			ImageDir:   "data/images",
		},
	}
}
