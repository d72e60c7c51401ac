// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"os"

	"github.com/mstarongithub/seatwm/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	noRepl     bool
	startCmd   string
	asJSON     bool
	outputName string
)

func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if startCmd != "" {
		conf.StartType = config.START_SINGLE_COMMAND
		conf.StartCommand = &startCmd
	} else if noRepl {
		conf.StartType = config.START_NONE
	}
	return conf, nil
}

func runCompositor(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	return wlMain(conf)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seatwm",
		Short:         "A small wayland window manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCompositor,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file. Searched in the xdg config dirs if empty")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the compositor (default)",
		RunE:  runCompositor,
	}
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().BoolVar(&noRepl, "no-repl", false, "Don't read commands from stdin")
		cmd.Flags().StringVar(&startCmd, "start", "", "Command to run once the compositor is up, implies --no-repl")
	}

	outputsCmd := &cobra.Command{
		Use:   "outputs",
		Short: "List available outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			return utilListOutputs(cmd.OutOrStdout(), conf, asJSON)
		},
	}
	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "List available modes for an output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			return utilListOutputModes(cmd.OutOrStdout(), conf, outputName, asJSON)
		},
	}
	modesCmd.Flags().StringVarP(&outputName, "output", "o", "", "Output to list the modes of")
	_ = modesCmd.MarkFlagRequired("output")
	for _, cmd := range []*cobra.Command{outputsCmd, modesCmd} {
		cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as json")
	}

	rootCmd.AddCommand(runCmd, outputsCmd, modesCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Errorln("seatwm failed")
		os.Exit(1)
	}
}
