// Command shift builds as a Go plugin exposing the shift transform through
// the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/transform/shift"
)

func Info() pipeline.Descriptor { return shift.Descriptor() }

func Create(config json.RawMessage) (interface{}, error) { return shift.Create(config) }

func main() {}
