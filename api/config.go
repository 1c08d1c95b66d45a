package api

import (
	"sync"

	"github.com/spf13/viper"
	"github.com/whyumesh/zonal-election-system/logging"
)

type Config struct {
	StorageConfig
	ServerConfig
	CacheConfig
	VotingConfig
}

type StorageConfig struct {
	TableNameElections    string
	TableNameZones        string
	TableNameCandidates   string
	TableNameVoters       string
	TableNameVotes        string
	TableNameOfflineVotes string
}

type ServerConfig struct {
	Port int
}

type CacheConfig struct {
	RedisAddr         string
	ResultsTTLSeconds int
}

type VotingConfig struct {
	// TestVoterPattern excludes matching voter ids from every public
	// tally; empty disables the exclusion.
	TestVoterPattern string
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNameElections:    viper.GetString("storage.TableNameElections"),
			TableNameZones:        viper.GetString("storage.TableNameZones"),
			TableNameCandidates:   viper.GetString("storage.TableNameCandidates"),
			TableNameVoters:       viper.GetString("storage.TableNameVoters"),
			TableNameVotes:        viper.GetString("storage.TableNameVotes"),
			TableNameOfflineVotes: viper.GetString("storage.TableNameOfflineVotes"),
		},
		ServerConfig: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
		CacheConfig: CacheConfig{
			RedisAddr:         getStringOrDefault("cache.RedisAddr", ""),
			ResultsTTLSeconds: getIntOrDefault("cache.ResultsTTLSeconds", 30),
		},
		VotingConfig: VotingConfig{
			TestVoterPattern: getStringOrDefault("voting.TestVoterPattern", "^TEST"),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
