package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/hcl"

	"github.com/carbonmarket/carbon-controller-go/logger"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const (
	storeBadger = "badger"
	storeBolt   = "bolt"
	storeMemory = "memory"
)

/*
config is loaded from HCL file, ie

	data_dir   = "/var/lib/carbon"
	store      = "badger"
	network_id = 3
	listen     = "localhost:8080"
	log_level  = "debug"
*/
type config struct {
	DataDir              string `hcl:"data_dir"`
	Store                string `hcl:"store"`
	NetworkID            int    `hcl:"network_id"`
	ControllerAddress    string `hcl:"controller_address"`
	StrictReregistration bool   `hcl:"strict_reregistration"`
	Listen               string `hcl:"listen"`

	LogLevel    string `hcl:"log_level"`
	LogEncoding string `hcl:"log_encoding"`
	LogFile     string `hcl:"log_file"`
}

// defaultControllerAddress is an address nobody holds the key of.
var defaultControllerAddress = common.BytesToAddress(crypto.Keccak256([]byte("carbon-controller")))

func defaultConfig() *config {
	return &config{
		DataDir:           "carbon-data",
		Store:             storeBadger,
		NetworkID:         int(types.NetworkLocal),
		ControllerAddress: defaultControllerAddress.Hex(),
		Listen:            "localhost:8080",
		LogLevel:          "info",
	}
}

// loadConfig overwrites fields of cfg which are set in the file.
func loadConfig(path string, cfg *config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	if err := hcl.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("parsing configuration %s: %w", path, err)
	}
	return nil
}

func (c *config) validate() error {
	switch c.Store {
	case storeBadger, storeBolt, storeMemory:
	default:
		return fmt.Errorf("unknown store type %q", c.Store)
	}
	if c.Store != storeMemory && c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.NetworkID <= 0 || c.NetworkID > math.MaxUint16 {
		return fmt.Errorf("invalid network ID %d", c.NetworkID)
	}
	if _, err := types.ParseAddress(c.ControllerAddress); err != nil {
		return fmt.Errorf("controller address: %w", err)
	}
	return nil
}

func (c *config) controllerAddress() types.Address {
	addr, _ := types.ParseAddress(c.ControllerAddress)
	return addr
}

func (c *config) logger() logger.Config {
	return logger.Config{
		Level:    c.LogLevel,
		Encoding: c.LogEncoding,
		File:     c.LogFile,
	}
}
