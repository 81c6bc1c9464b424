// Command sequence builds as a Go plugin exposing the reference sequence
// input through the engine's ABI (§6).
package main

import (
	"encoding/json"

	"github.com/Gamadril/lightoros/pipeline"
	"github.com/Gamadril/lightoros/plugins/input/sequence"
)

func Info() pipeline.Descriptor { return sequence.Descriptor() }

func Create(config json.RawMessage) (interface{}, error) { return sequence.Create(config) }

func main() {}
