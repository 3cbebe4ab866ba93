//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for retail-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/retaildwh/retail-etl/internal/config"
	"github.com/retaildwh/retail-etl/internal/etl"
	"github.com/retaildwh/retail-etl/internal/logging"
	"github.com/retaildwh/retail-etl/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "retail-etl",
		Short: "Star-schema ETL for retail transaction extracts",
		Long: `retail-etl reads raw e-commerce extracts (a transactions CSV plus
optional product and customer catalog JSON files), normalizes the rows,
reshapes them into a star schema (DimDate, DimCustomer, DimProduct,
FactSales) with surrogate keys and computed revenue, and loads the
result into a PostgreSQL warehouse for downstream reporting.

Credentials and locations come from config file and flags only; the
pipeline never reads process environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./retail-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sampleCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// tableNames maps the configured destination table names into the
// pipeline's TableNames.
func tableNames() etl.TableNames {
	return etl.TableNames{
		DimDate:     cfg.Tables.DimDate,
		DimCustomer: cfg.Tables.DimCustomer,
		DimProduct:  cfg.Tables.DimProduct,
		FactSales:   cfg.Tables.FactSales,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
