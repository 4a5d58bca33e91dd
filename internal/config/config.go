package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Addr     string   `koanf:"addr"`
	Language string   `koanf:"language"`
	Company  Company  `koanf:"company"`
	Clockify Clockify `koanf:"clockify"`
	Output   Output   `koanf:"output"`
	Report   Report   `koanf:"report"`
	Auth     Auth     `koanf:"auth"`
}

type Company struct {
	Name     string `koanf:"name"`
	LogoPath string `koanf:"logopath"`
}

type Clockify struct {
	APIKey      string `koanf:"apikey"`
	WorkspaceID string `koanf:"workspaceid"`
	BaseURL     string `koanf:"baseurl"`
}

type Output struct {
	Dir        string `koanf:"dir"`
	Format     string `koanf:"format"`
	CSVSidecar bool   `koanf:"csvsidecar"`
}

// Report preselects the pipeline inputs for non-interactive runs.
type Report struct {
	Start       string   `koanf:"start"`
	End         string   `koanf:"end"`
	Client      string   `koanf:"client"`
	Projects    []string `koanf:"projects"`
	AllProjects bool     `koanf:"allprojects"`
}

type Auth struct {
	UsersFile string `koanf:"usersfile"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Addr:     ":8686",
		Language: "de",
		Output: Output{
			Dir:        ".",
			Format:     "pdf",
			CSVSidecar: true,
		},
		Auth: Auth{
			UsersFile: "users.yaml",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "ZEITBERICHT_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ZEITBERICHT_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
