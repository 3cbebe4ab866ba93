//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for retail-etl.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for retail-etl.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source holds locations of the raw extract files.
	Source SourceConfig `mapstructure:"source"`

	// Tables holds destination table names.
	Tables TablesConfig `mapstructure:"tables"`

	// Load holds configuration for the warehouse write phase.
	Load LoadConfig `mapstructure:"load"`
}

// SourceConfig holds raw extract locations.
type SourceConfig struct {
	// Transactions is the path of the transactions extract (.csv or .json).
	Transactions string `mapstructure:"transactions"`

	// Products is the path of the product catalog (optional).
	Products string `mapstructure:"products"`

	// Customers is the path of the customer catalog (optional).
	Customers string `mapstructure:"customers"`

	// Encoding is the character encoding of the transactions extract.
	// Options: utf-8 (default), latin1, windows-1252.
	Encoding string `mapstructure:"encoding"`
}

// TablesConfig holds the destination table name for each star-schema table.
type TablesConfig struct {
	DimDate     string `mapstructure:"dim_date"`
	DimCustomer string `mapstructure:"dim_customer"`
	DimProduct  string `mapstructure:"dim_product"`
	FactSales   string `mapstructure:"fact_sales"`
}

// LoadConfig holds configuration for the warehouse write phase.
type LoadConfig struct {
	// BatchSize is the number of rows per batched insert.
	BatchSize int `mapstructure:"batch_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			Encoding: "utf-8",
		},
		Tables: TablesConfig{
			DimDate:     "DimDate",
			DimCustomer: "DimCustomer",
			DimProduct:  "DimProduct",
			FactSales:   "FactSales",
		},
		Load: LoadConfig{
			BatchSize: 1000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retail-etl.yaml
// 3. ~/.config/retail-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("retail-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retail-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Tables.DimDate == "" || c.Tables.DimCustomer == "" ||
		c.Tables.DimProduct == "" || c.Tables.FactSales == "" {
		return fmt.Errorf("all four destination table names are required")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	return c.Validate()
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ValidateDryRun()
}

// ValidateDryRun checks configuration required for a dry run, which
// transforms and reports without connecting to the warehouse.
func (c *Config) ValidateDryRun() error {
	if c.Source.Transactions == "" {
		return fmt.Errorf("transactions source path is required")
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}
