// Package content embeds the default Kaito world.
package content

import (
	"embed"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/loader"
)

//go:embed world/*.lua
var FS embed.FS

// Dir is the directory of the world files inside FS.
const Dir = "world"

// Load compiles the embedded world.
func Load() (*state.Defs, error) {
	return loader.LoadFS(FS, Dir)
}
