// Package config loads and validates the application configuration.
package config

// TileLayer describes one selectable base map or translucent overlay layer
// (hazard maps are overlays drawn above the active base at reduced opacity).
type TileLayer struct {
	Name        string  `yaml:"name" koanf:"name"`
	URL         string  `yaml:"url" koanf:"url"`
	Attribution string  `yaml:"attribution" koanf:"attribution"`
	MaxZoom     int     `yaml:"max_zoom" koanf:"max_zoom"`
	Overlay     bool    `yaml:"overlay" koanf:"overlay"`
	Opacity     float64 `yaml:"opacity" koanf:"opacity"`
}

// MapConfig controls the rendered map surface.
type MapConfig struct {
	Title     string      `yaml:"title" koanf:"title"`
	CenterLat float64     `yaml:"center_lat" koanf:"center_lat"`
	CenterLng float64     `yaml:"center_lng" koanf:"center_lng"`
	Zoom      int         `yaml:"zoom" koanf:"zoom"`
	Tiles     []TileLayer `yaml:"tiles" koanf:"tiles"`
}

// DrawConfig controls the draw toolbar on the map page.
type DrawConfig struct {
	Position     string `yaml:"position" koanf:"position"`
	Export       bool   `yaml:"export" koanf:"export"`
	SaveToFile   bool   `yaml:"save_to_file" koanf:"save_to_file"`
	ShowGeometry bool   `yaml:"show_geometry" koanf:"show_geometry"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
}

// ImportConfig names the CSV files and image directory read by imports.
type ImportConfig struct {
	DevicesCSV  string `yaml:"devices_csv" koanf:"devices_csv"`
	MarkersCSV  string `yaml:"markers_csv" koanf:"markers_csv"`
	PolygonsCSV string `yaml:"polygons_csv" koanf:"polygons_csv"`
	BearsCSV    string `yaml:"bears_csv" koanf:"bears_csv"`
	ImageDir    string `yaml:"image_dir" koanf:"image_dir"`
}

// Config is the top-level configuration, corresponding to .bearmap.yml.
type Config struct {
	Database string       `yaml:"database" koanf:"database"`
	AboutMD  string       `yaml:"about_md" koanf:"about_md"`
	Map      MapConfig    `yaml:"map" koanf:"map"`
	Draw     DrawConfig   `yaml:"draw" koanf:"draw"`
	Server   ServerConfig `yaml:"server" koanf:"server"`
	Import   ImportConfig `yaml:"import" koanf:"import"`
}
