package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .bearmap.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Let's configure your deterrence map.")
	fmt.Println()

	cfg := DefaultConfig()

	titlePrompt := promptui.Prompt{
		Label:   "Map title",
		Default: cfg.Map.Title,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("map title: %w", err)
	}
	cfg.Map.Title = title

	latPrompt := promptui.Prompt{
		Label:    "Map center latitude",
		Default:  fmt.Sprintf("%v", cfg.Map.CenterLat),
		Validate: validateFloat(-90, 90),
	}
	latStr, err := latPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("center latitude: %w", err)
	}
	cfg.Map.CenterLat, _ = strconv.ParseFloat(latStr, 64)

	lngPrompt := promptui.Prompt{
		Label:    "Map center longitude",
		Default:  fmt.Sprintf("%v", cfg.Map.CenterLng),
		Validate: validateFloat(-180, 180),
	}
	lngStr, err := lngPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("center longitude: %w", err)
	}
	cfg.Map.CenterLng, _ = strconv.ParseFloat(lngStr, 64)

	zoomPrompt := promptui.Prompt{
		Label:    "Initial zoom (0-22)",
		Default:  strconv.Itoa(cfg.Map.Zoom),
		Validate: validateInt(0, 22),
	}
	zoomStr, err := zoomPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("zoom: %w", err)
	}
	cfg.Map.Zoom, _ = strconv.Atoi(zoomStr)

	positionPrompt := promptui.Select{
		Label: "Draw toolbar corner",
		Items: []string{"topleft", "topright", "bottomleft", "bottomright"},
	}
	_, position, err := positionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("draw position: %w", err)
	}
	cfg.Draw.Position = position

	dbPrompt := promptui.Prompt{
		Label:   "Database path",
		Default: cfg.Database,
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	cfg.Database = dbPath

	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validateInt(1, 65535),
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	imagePrompt := promptui.Prompt{
		Label:   "Device image directory (blank to skip image indexing)",
		Default: cfg.Import.ImageDir,
	}
	imageDir, err := imagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	cfg.Import.ImageDir = imageDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

func validateFloat(min, max float64) promptui.ValidateFunc {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %v and %v", min, max)
		}
		return nil
	}
}

func validateInt(min, max int) promptui.ValidateFunc {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}
