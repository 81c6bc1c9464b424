// Command dim builds as a Go plugin exposing the brightness-scaling
// transform through the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/transform/dim"
)

func Info() pipeline.Descriptor { return dim.Descriptor() }

func Create(config json.RawMessage) (interface{}, error) { return dim.Create(config) }

func main() {}
