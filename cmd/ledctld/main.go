// Command ledctld is the process-level launcher for the engine. It reads a
// pipeline configuration file, starts the engine, and then follows simple
// line commands on stdin until it is told to stop or stdin is closed.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Gamadril/lightoros/pipeline"
)

var log = logrus.WithField("component", "ledctld")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledctld",
		Short: "ledctld runs the LED engine described by a pipeline configuration",
	}
	root.AddCommand(newRunCommand())
	return root
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "start the engine and follow commands from stdin",
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to the pipeline configuration file")
	flags.String("plugins-dir", "", "directory the plugin loader scans for .so modules")

	v := viper.New()
	v.SetEnvPrefix("LEDCTL")
	v.AutomaticEnv()
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("plugins-dir", flags.Lookup("plugins-dir"))

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runEngineWithViper(v)
	}

	return cmd
}

func runEngineWithViper(v *viper.Viper) error {
	configPath := v.GetString("config")
	pluginsDir := v.GetString("plugins-dir")

	if configPath == "" {
		return fmt.Errorf("ledctld: --config is required")
	}
	if pluginsDir == "" {
		return fmt.Errorf("ledctld: --plugins-dir is required")
	}

	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("ledctld: reading config %s: %w", configPath, err)
	}

	engine := pipeline.New()
	if err := engine.Start(string(configBytes), pluginsDir); err != nil {
		return fmt.Errorf("ledctld: starting engine: %w", err)
	}
	log.WithFields(logrus.Fields{
		"config":      configPath,
		"plugins_dir": pluginsDir,
	}).Info("engine running")

	return followCommands(os.Stdin, engine, string(configBytes), pluginsDir)
}

// followCommands reads newline-delimited commands until EOF. "stop" and
// "start" drive the engine's lifecycle; anything else is ignored. The loop
// itself only exits at end of input, so a "start" sent after a "stop" is
// still read and honored within the same process.
func followCommands(r *os.File, engine *pipeline.Engine, configText, pluginsDir string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "stop":
			if engine.Running() {
				if err := engine.Stop(); err != nil {
					return fmt.Errorf("ledctld: stopping engine: %w", err)
				}
				log.Info("engine stopped")
			}
		case "start":
			if !engine.Running() {
				if err := engine.Start(configText, pluginsDir); err != nil {
					return fmt.Errorf("ledctld: starting engine: %w", err)
				}
				log.Info("engine running")
			}
		default:
			// ignore blank lines and anything else
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ledctld: reading stdin: %w", err)
	}
	if engine.Running() {
		if err := engine.Stop(); err != nil {
			return fmt.Errorf("ledctld: stopping engine: %w", err)
		}
		log.Info("engine stopped")
	}
	return nil
}
