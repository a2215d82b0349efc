package main

import (
	"bytes"
	"log"
	"strings"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/taldoflemis/forno/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	Mongo         pacchetto.MongoSettings         `mapstructure:"mongo" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

// LoadConfig layers CAMERIERE_* variables and the bare PORT, DATABASE_URL and
// DATABASE_NAME variables on top of base.yaml.
func LoadConfig() (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(bytes.NewReader(baseConfig))
	if err != nil {
		log.Println("Failed to read config from yaml")
		return nil, err
	}

	v.SetEnvPrefix("CAMERIERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"http.port":      "PORT",
		"mongo.uri":      "DATABASE_URL",
		"mongo.database": "DATABASE_NAME",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var cfg Settings
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := newSettingsValidator().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newSettingsValidator() *validator.Validate {
	validate := validator.New()
	allowedHeaders := map[string]struct{}{
		"Accept": {}, "Authorization": {}, "Content-Type": {}, "X-CSRF-Token": {},
	}
	validate.RegisterValidation("baseheader", func(fl validator.FieldLevel) bool {
		header := fl.Field().String()
		_, ok := allowedHeaders[header]
		return ok
	})
	return validate
}
