// Command crop builds as a Go plugin exposing the fixed-rectangle crop
// transform through the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/transform/crop"
)

func Info() pipeline.Descriptor { return crop.Descriptor() }

func Create(config json.RawMessage) (interface{}, error) { return crop.Create(config) }

func main() {}
