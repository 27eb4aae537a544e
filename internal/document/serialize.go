package document

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	img "refstudio/internal/image"
)

// CanvasVersion is the only canvas file format version this build reads and
// writes. Version checks are exact; there is no migration path yet.
const CanvasVersion = "1.0"

// ErrUnsupportedVersion is returned by Load for a canvas file whose version
// does not match CanvasVersion. The document is left untouched.
var ErrUnsupportedVersion = errors.New("unsupported canvas version")

type canvasFile struct {
	Version string        `json:"version"`
	Layers  []canvasLayer `json:"layers"`
}

type canvasLayer struct {
	Name    string  `json:"name"`
	Visible bool    `json:"visible"`
	Locked  bool    `json:"locked"`
	Opacity float64 `json:"opacity"`
	ScaleX  float64 `json:"scale_x"`
	ScaleY  float64 `json:"scale_y"`
	PosX    float64 `json:"pos_x"`
	PosY    float64 `json:"pos_y"`
	// Image is the layer's pixels as base64 PNG, empty for an empty layer.
	Image string `json:"image,omitempty"`
}

// Save writes the document to a canvas file. Placement, visibility, lock
// state, and pixels survive the round trip; history does not.
func (d *Document) Save(path string) error {
	file := canvasFile{Version: CanvasVersion}
	for _, l := range d.stack.Layers() {
		cl := canvasLayer{
			Name:    l.Name(),
			Visible: l.Visible(),
			Locked:  l.Locked(),
			Opacity: l.Opacity(),
			PosX:    l.Position().X,
			PosY:    l.Position().Y,
		}
		cl.ScaleX, cl.ScaleY = l.Scale()
		if buf := l.Buffer(); buf != nil {
			data, err := buf.EncodePNG()
			if err != nil {
				return fmt.Errorf("failed to encode layer %q: %w", l.Name(), err)
			}
			cl.Image = base64.StdEncoding.EncodeToString(data)
		}
		file.Layers = append(file.Layers, cl)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal canvas: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write canvas: %w", err)
	}

	d.path = path
	d.modified = false
	d.log.Info("canvas saved", "path", path, "layers", len(file.Layers))
	return nil
}

// Load replaces the document with the contents of a canvas file. The load
// fails closed: a version mismatch or any decode error leaves the current
// layers and history untouched. On success the history is cleared; loaded
// state has no edits to undo.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read canvas: %w", err)
	}

	var file canvasFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse canvas: %w", err)
	}
	if file.Version != CanvasVersion {
		return fmt.Errorf("%w: %q (want %q)", ErrUnsupportedVersion, file.Version, CanvasVersion)
	}

	layers := make([]*img.Layer, 0, len(file.Layers))
	for i, cl := range file.Layers {
		var buf *img.Buffer
		if cl.Image != "" {
			raw, err := base64.StdEncoding.DecodeString(cl.Image)
			if err != nil {
				return fmt.Errorf("layer %d (%q): bad image payload: %w", i, cl.Name, err)
			}
			buf, err = img.DecodePNG(raw)
			if err != nil {
				return fmt.Errorf("layer %d (%q): %w", i, cl.Name, err)
			}
		}
		layers = append(layers, img.Restore(cl.Name, buf,
			cl.PosX, cl.PosY, cl.ScaleX, cl.ScaleY, cl.Opacity, cl.Visible, cl.Locked))
	}

	d.stack.Replace(layers)
	d.history.Clear()
	d.path = path
	d.modified = false
	d.log.Info("canvas loaded", "path", path, "layers", len(layers))
	return nil
}
