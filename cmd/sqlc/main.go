// sqlc генерирует код отдельно для каждого файла запросов из .sqlc.base.yaml,
// пакет называется по каталогу файла.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	baseConfigName    = ".sqlc.base"
	defaultConfigName = "sqlc.yaml"
)

func generateConfig(version string, engine *viper.Viper, file string) (string, error) {
	dir := filepath.Dir(file)
	engine.Set("gen.go.package", filepath.Base(dir))
	engine.Set("gen.go.out", dir)
	engine.Set("queries", file)

	settings := engine.AllSettings()
	delete(settings, "source")

	bs, err := yaml.Marshal(map[string]interface{}{
		"version": version,
		"sql":     []interface{}{settings},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal config to yaml")
	}

	_ = os.Remove(defaultConfigName)
	if err = os.WriteFile(defaultConfigName, bs, 0o644); err != nil {
		return "", errors.Wrap(err, "write sqlc.yaml")
	}
	return defaultConfigName, nil
}

func callSqlc(config string) error {
	cmd := exec.Command("sqlc", "generate", "--file", config)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "call sqlc: %s", string(output))
	}
	return nil
}

func run() error {
	viper.SetConfigName(baseConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read base config")
	}

	patterns := viper.GetStringSlice("sql.0.source")
	if len(patterns) == 0 {
		return errors.New("has no sql.0.source in config")
	}
	var files []string
	for _, pattern := range patterns {
		f, err := filepath.Glob(pattern)
		if err != nil {
			return errors.Wrapf(err, "glob %s", pattern)
		}
		files = append(files, f...)
	}

	engine := viper.Sub("sql.0")
	engine.Set("schema", viper.GetString("sql.0.schema"))

	defer os.Remove(defaultConfigName)
	for _, file := range files {
		configFile, err := generateConfig(viper.GetString("version"), engine, file)
		if err != nil {
			return errors.Wrapf(err, "generate config for %s", file)
		}
		if err = callSqlc(configFile); err != nil {
			return err
		}
		fmt.Printf("%s file complete\n", file)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("done")
}
