// Package filter implements the pixel transforms that can be applied to a
// layer, looked up by name from a fixed registry.
package filter

import (
	"fmt"
	"sort"

	"refstudio/internal/pipeline"
)

var registry = map[string]pipeline.TransformFunc{
	"brightness_contrast": BrightnessContrast,
	"invert":              Invert,
	"grayscale":           Grayscale,
	"color_balance":       ColorBalance,
	"blur":                Blur,
	"sharpen":             Sharpen,
	"noise_reduction":     NoiseReduction,
}

// Lookup returns the transform registered under name.
func Lookup(name string) (pipeline.TransformFunc, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	return fn, nil
}

// Names returns every registered filter name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
