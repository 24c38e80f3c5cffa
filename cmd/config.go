package cmd

import (
	"context"
	"os"
	"slices"

	"github.com/djcass44/debview/pkg/airutil"
	v1 "github.com/djcass44/debview/pkg/api/v1"
	"github.com/djcass44/debview/pkg/downloader"
	"github.com/djcass44/debview/pkg/source"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/yaml"
)

const (
	flagConfig   = "config"
	flagStatus   = "status"
	flagCacheDir = "cache-dir"
)

// addSourceFlags registers the flags used
// to locate the status file.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagConfig, "c", "", "path to a viewer configuration file")
	cmd.Flags().StringArrayP(flagStatus, "s", nil, "status file to read. May be a path, url or oci://image reference. Can be given multiple times")
	cmd.Flags().String(flagCacheDir, "", "cache directory (defaults to user cache dir)")

	_ = cmd.MarkFlagFilename(flagConfig, ".yaml", ".yml", ".json")
	_ = cmd.MarkFlagDirname(flagCacheDir)
}

// getConfig reads the configuration file (if there is one)
// and applies any overrides from the command line.
func getConfig(cmd *cobra.Command) (v1.Viewer, error) {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)
	statusPaths, _ := cmd.Flags().GetStringArray(flagStatus)
	cacheDir, _ := cmd.Flags().GetString(flagCacheDir)

	var cfg v1.Viewer
	if configPath != "" {
		var err error
		cfg, err = readConfig(configPath)
		if err != nil {
			return v1.Viewer{}, err
		}
		log.V(1).Info("read configuration file", "path", configPath, "sources", len(cfg.Spec.Sources))
	}

	if len(statusPaths) > 0 {
		cfg.Spec.Sources = nil
		for _, s := range statusPaths {
			cfg.Spec.Sources = append(cfg.Spec.Sources, source.ParseSpec(s))
		}
	}
	if cacheDir != "" {
		cfg.Spec.CacheDir = cacheDir
	}
	cfg.Spec.CacheDir = airutil.CacheDir(airutil.ExpandEnv(cfg.Spec.CacheDir))
	return cfg, nil
}

// getSources returns the configured sources, or the
// default sources if none have been configured.
func getSources(ctx context.Context, cfg v1.ViewerSpec) ([]source.Source, error) {
	log := logr.FromContextOrDiscard(ctx)
	if len(cfg.Sources) == 0 {
		log.V(1).Info("using default status sources")
		return source.Defaults(), nil
	}
	// only create the cache directory
	// if we need it
	var dl *downloader.Downloader
	if slices.ContainsFunc(cfg.Sources, func(s v1.Source) bool {
		return s.Type == v1.SourceURL
	}) {
		var err error
		dl, err = downloader.NewDownloader(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
	}
	return source.FromSpec(cfg.Sources, dl)
}

func readConfig(s string) (v1.Viewer, error) {
	f, err := os.Open(s)
	if err != nil {
		return v1.Viewer{}, err
	}
	defer f.Close()

	var config v1.Viewer
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return v1.Viewer{}, err
	}
	return config, nil
}
