// Command reverse builds as a Go plugin (`go build -buildmode=plugin`)
// exposing the reverse transform through the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/transform/reverse"
)

// Info is resolved by pipeline.Loader as the plugin's InfoFunc.
func Info() pipeline.Descriptor { return reverse.Descriptor() }

// Create is resolved by pipeline.Loader as the plugin's CreateFunc.
func Create(config json.RawMessage) (interface{}, error) { return reverse.Create(config) }

func main() {}
