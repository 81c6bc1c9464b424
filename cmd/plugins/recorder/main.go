// Command recorder builds as a Go plugin exposing the reference recorder
// output through the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/output/recorder"
)

func Info() pipeline.Descriptor { return recorder.Descriptor() }

func Create(config json.RawMessage) (interface{}, error) { return recorder.Create(config) }

func main() {}
