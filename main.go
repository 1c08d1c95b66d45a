// @title Zonal Election System API
// @version 1.0
// @description Backend API for zoned elections: online voting, offline capture and result tabulation

// @securityDefinitions.apikey AdminToken
// @in header
// @name x-admin-token
package main

import (
	"github.com/spf13/viper"
	"github.com/whyumesh/zonal-election-system/api"
	"github.com/whyumesh/zonal-election-system/logging"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
