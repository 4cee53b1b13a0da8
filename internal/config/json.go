// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and the
// string-friendly [Duration] type, so a config file can say "24h" instead
// of nanoseconds.
type StructuredJSONConfig struct {
	App struct {
		Environment   string   `json:"environment"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Version       string   `json:"version"`
	} `json:"app,omitempty"`

	Security struct {
		MasterSecret    string   `json:"master_secret"`
		EncryptionSalt  string   `json:"encryption_salt"`
		CaptchaSignKey  string   `json:"captcha_sign_key"`
		CaptchaTTL      Duration `json:"captcha_ttl"`
		AdminPathLength int      `json:"admin_path_length"`
	} `json:"security,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		PublicBaseURL  string   `json:"public_base_url"`
	} `json:"server,omitempty"`

	Payment struct {
		WebhookToken string `json:"webhook_token"`
	} `json:"payment,omitempty"`

	Workers struct {
		MembershipSweepInterval Duration `json:"membership_sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Environment:   jsonCfg.App.Environment,
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			Version:       jsonCfg.App.Version,
		},
		Security: Security{
			MasterSecret:    jsonCfg.Security.MasterSecret,
			EncryptionSalt:  jsonCfg.Security.EncryptionSalt,
			CaptchaSignKey:  jsonCfg.Security.CaptchaSignKey,
			CaptchaTTL:      time.Duration(jsonCfg.Security.CaptchaTTL),
			AdminPathLength: jsonCfg.Security.AdminPathLength,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			PublicBaseURL:  jsonCfg.Server.PublicBaseURL,
		},
		Payment: Payment{
			WebhookToken: jsonCfg.Payment.WebhookToken,
		},
		Workers: Workers{
			MembershipSweepInterval: time.Duration(jsonCfg.Workers.MembershipSweepInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
