package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/healthbuddy/config"
	"github.com/careloop/healthbuddy/internal/agent"
	"github.com/careloop/healthbuddy/internal/agent/telemetry"
	srv "github.com/careloop/healthbuddy/internal/server"
)

func main() {
	var cfgPath string

	root := &cobra.Command{Use: "healthbuddy"}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config and .)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return srv.Run(cfg)
		},
	}

	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			hb, err := newFacade(cfg)
			if err != nil {
				return err
			}
			result := hb.Answer(cmd.Context(), strings.Join(args, " "))
			fmt.Println(result.AnswerText)
			for _, line := range result.Record.ExecutionLog {
				fmt.Fprintln(os.Stderr, "  "+line)
			}
			return nil
		},
	}

	doctors := &cobra.Command{Use: "doctors", Short: "Inspect the doctor directory"}
	doctorsList := &cobra.Command{
		Use:   "list",
		Short: "List all doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			hb, err := newFacade(cfg)
			if err != nil {
				return err
			}
			for _, d := range hb.ListDoctors() {
				fmt.Printf("%s | %s | %s | %s | %s\n", d.Name, d.Specialization, d.AvailableTimings, d.Location, d.Contact)
			}
			return nil
		},
	}
	doctorsSearch := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the directory by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			hb, err := newFacade(cfg)
			if err != nil {
				return err
			}
			matches, err := hb.SearchDoctors(strings.Join(args, " "), 5)
			if err != nil {
				return err
			}
			for _, d := range matches {
				fmt.Printf("%s | %s\n", d.Name, d.Specialization)
			}
			return nil
		},
	}
	doctors.AddCommand(doctorsList, doctorsSearch)

	root.AddCommand(serve, ask, doctors)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newFacade(cfg *config.Config) (*agent.HealthBuddy, error) {
	tele := telemetry.NewTelemetry(cfg.Telemetry, log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags))
	return agent.New(cfg, log.New(log.Writer(), "[HEALTHBUDDY] ", log.LstdFlags), tele)
}
