/***** BEGIN LICENSE BLOCK *****
# This Source Code Form is subject to the terms of the Mozilla Public
# License, v. 2.0. If a copy of the MPL was not distributed with this file,
# You can obtain one at http://mozilla.org/MPL/2.0/.
#
# The Initial Developer of the Original Code is the Mozilla Foundation.
# Portions created by the Initial Developer are Copyright (C) 2012
# the Initial Developer. All Rights Reserved.
#
# ***** END LICENSE BLOCK *****/

package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// PluginRef names a plugin to instantiate as one member of a pipeline, along
// with the arbitrary JSON config subtree to pass to its Create (§6).
type PluginRef struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config"`
}

// InputPipeDesc describes one input pipeline (§3).
type InputPipeDesc struct {
	Name     string      `json:"name"`
	Priority uint8       `json:"priority"`
	Members  []PluginRef `json:"members"`
}

// OutputPipeDesc describes one output pipeline (§3).
type OutputPipeDesc struct {
	Name    string      `json:"name"`
	Members []PluginRef `json:"members"`
}

// EngineConfig is the top-level configuration document (§3, §6).
type EngineConfig struct {
	MaxInputInactivityPeriod uint64           `json:"max_input_inactivity_period"`
	Input                    []InputPipeDesc  `json:"input"`
	Output                   []OutputPipeDesc `json:"output"`
}

// ParseConfig unmarshals and validates the config text per §3/§6/§7. It does
// not touch the plugin directory; that happens during pipeline construction
// so that "unknown plugin name" and "kind mismatch" errors can name the
// actual plugin involved.
func ParseConfig(configText string) (*EngineConfig, error) {
	var cfg EngineConfig
	if err := json.Unmarshal([]byte(configText), &cfg); err != nil {
		return nil, configErrorf("", "invalid configuration: %s", err)
	}

	seen := make(map[string]bool, len(cfg.Input)+len(cfg.Output))

	for _, in := range cfg.Input {
		if in.Name == "" {
			return nil, configErrorf("", "input pipeline has no name")
		}
		if seen[in.Name] {
			return nil, configErrorf(in.Name, "duplicate pipeline name")
		}
		seen[in.Name] = true

		if in.Priority == 0 {
			return nil, configErrorf(in.Name, "priority %d out of range 1..255", in.Priority)
		}
		if len(in.Members) == 0 {
			return nil, configErrorf(in.Name, "pipeline is empty")
		}
	}

	for _, out := range cfg.Output {
		if out.Name == "" {
			return nil, configErrorf("", "output pipeline has no name")
		}
		if seen[out.Name] {
			return nil, configErrorf(out.Name, "duplicate pipeline name")
		}
		seen[out.Name] = true

		if len(out.Members) == 0 {
			return nil, configErrorf(out.Name, "pipeline is empty")
		}
	}

	return &cfg, nil
}

// DecodeConfigInto decodes a plugin's raw JSON config subtree into dst, a
// pointer to the plugin's own typed config struct. It goes through an
// intermediate map (json -> map[string]interface{} -> mapstructure) rather
// than json.Unmarshal(raw, dst) directly so that plugin authors get
// mapstructure's looser, tag-driven field matching — the same shape of
// convenience the teacher gave plugins via LoadConfigStruct/HasConfigStruct,
// just JSON-native instead of TOML-native (SPEC_FULL.md §1.1).
func DecodeConfigInto(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("decoding plugin config: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("building config decoder: %w", err)
	}
	return dec.Decode(generic)
}
