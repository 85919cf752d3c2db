package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/alvinbaena/pwdcheck/pkg/hibp"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	ApiURL    string        `mapstructure:"PWNED_API_URL" validate:"required,url"`
	UserAgent string        `mapstructure:"PWNED_USER_AGENT" validate:"required"`
	RetryMax  int           `mapstructure:"PWNED_RETRY_MAX" validate:"gte=0,lte=10"`
	Timeout   time.Duration `mapstructure:"PWNED_TIMEOUT" validate:"gt=0"`
	Padding   bool          `mapstructure:"PWNED_PADDING"`
	SpeechCmd string        `mapstructure:"SPEECH_CMD"`
	StoreDir  string        `mapstructure:"STORE_DIR" validate:"omitempty,dir"`
}

// ClientOptions for the range API client.
func (c Config) ClientOptions() hibp.Options {
	return hibp.Options{
		BaseURL:   c.ApiURL,
		UserAgent: c.UserAgent,
		RetryMax:  c.RetryMax,
		Timeout:   c.Timeout,
		Padding:   c.Padding,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PWNED_API_URL", hibp.DefaultBaseURL)
	v.SetDefault("PWNED_USER_AGENT", hibp.DefaultUserAgent)
	v.SetDefault("PWNED_RETRY_MAX", 3)
	v.SetDefault("PWNED_TIMEOUT", 30*time.Second)
	v.SetDefault("PWNED_PADDING", false)
	v.SetDefault("SPEECH_CMD", "")
	v.SetDefault("STORE_DIR", "")
}

func bindEnvs(v *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		fv := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Struct:
			bindEnvs(v, fv.Interface(), append(parts, tv)...)
		default:
			_ = v.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "url":
		return "This field must be an absolute URL"
	case "dir":
		return "This field must be an existing directory"
	case "gte", "lte", "gt":
		return fmt.Sprintf("This field must be %s %s", fe.Tag(), fe.Param())
	}
	return fe.Error() // default error
}

// Load reads the configuration from the environment.
func Load() (config Config, err error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	config = Config{}
	bindEnvs(v, config)

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("mapstructure")
	})

	if err = validate.Struct(&config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), msgForTag(fe)))
			}
			err = errors.New(strings.Join(msgs, ". "))
		}
	}

	return
}
