package sink

import (
	"bytes"
	"encoding/json"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render"
)

// RenderJSON exports the scene as indented JSON.
func RenderJSON(sc render.Scene) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encode scene")
	}
	return buf.Bytes(), nil
}
