package configure

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func checkErr(err error) {
	if err != nil {
		zap.S().Fatalw("config",
			"error", err,
		)
	}
}

func New() *Config {
	initLogging("info")

	config := viper.New()

	// Default config
	b, _ := json.Marshal(defaultConfig())
	tmp := viper.New()
	defaults := bytes.NewReader(b)

	tmp.SetConfigType("json")
	checkErr(tmp.ReadConfig(defaults))
	checkErr(config.MergeConfigMap(tmp.AllSettings()))

	pflag.String("config", "config.yaml", "Config file location")
	pflag.Bool("noheader", false, "Disable the startup header")

	pflag.Parse()
	checkErr(config.BindPFlags(pflag.CommandLine))

	// File
	config.SetConfigFile(config.GetString("config"))
	config.AddConfigPath(".")

	if err := config.ReadInConfig(); err == nil {
		checkErr(config.MergeInConfig())
	}

	bindEnvs(config, Config{})

	// Environment
	config.AutomaticEnv()
	config.SetEnvPrefix("PRESENCE")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)

	c := &Config{}
	checkErr(config.Unmarshal(&c))

	initLogging(c.Level)

	return c
}

func defaultConfig() Config {
	cfg := Config{
		Level:      "info",
		ConfigFile: "config.yaml",
	}

	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.DB = "presence"
	cfg.Nats.URL = "nats://localhost:4222"
	cfg.Nats.SubjectPrefix = "presence"
	cfg.Presence.DisconnectedDelay = 60000
	cfg.Presence.SweepInterval = time.Minute
	cfg.Presence.SweepEnabled = true
	cfg.Http.Addr = "0.0.0.0"
	cfg.Http.Ports.REST = 3000

	return cfg
}

func bindEnvs(config *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)

	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)

		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(config, v.Interface(), append(parts, tv)...)
		default:
			_ = config.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	ConfigFile string `mapstructure:"config" json:"config"`
	NoHeader   bool   `mapstructure:"noheader" json:"noheader"`

	K8S struct {
		NodeName string `mapstructure:"node_name" json:"node_name"`
		PodName  string `mapstructure:"pod_name" json:"pod_name"`
	} `mapstructure:"k8s" json:"k8s"`

	Mongo struct {
		URI      string `mapstructure:"uri" json:"uri"`
		Username string `mapstructure:"username" json:"username"`
		Password string `mapstructure:"password" json:"password"`
		DB       string `mapstructure:"db" json:"db"`
		Direct   bool   `mapstructure:"direct" json:"direct"`
	} `mapstructure:"mongo" json:"mongo"`

	Nats struct {
		URL           string `mapstructure:"url" json:"url"`
		SubjectPrefix string `mapstructure:"subject_prefix" json:"subject_prefix"`
	} `mapstructure:"nats" json:"nats"`

	Presence struct {
		// Milliseconds without renewed activity before a user counts as
		// offline. Must be identical on every node of a deployment.
		DisconnectedDelay int64         `mapstructure:"disconnected_delay" json:"disconnected_delay"`
		SweepInterval     time.Duration `mapstructure:"sweep_interval" json:"sweep_interval"`
		SweepEnabled      bool          `mapstructure:"sweep_enabled" json:"sweep_enabled"`
	} `mapstructure:"presence" json:"presence"`

	Http struct {
		Addr  string `mapstructure:"addr" json:"addr"`
		Ports struct {
			REST int `mapstructure:"rest" json:"rest"`
		} `mapstructure:"ports" json:"ports"`
	} `mapstructure:"http" json:"http"`

	Health struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
	} `mapstructure:"health" json:"health"`

	Monitoring struct {
		Enabled bool       `mapstructure:"enabled" json:"enabled"`
		Bind    string     `mapstructure:"bind" json:"bind"`
		Labels  LabelsList `mapstructure:"labels" json:"labels"`
	} `mapstructure:"monitoring" json:"monitoring"`
}

type LabelsList []struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (l LabelsList) ToPrometheus() prometheus.Labels {
	mp := prometheus.Labels{}

	for _, v := range l {
		mp[v.Key] = v.Value
	}

	return mp
}
