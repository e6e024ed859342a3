/*
Copyright © 2019 the lightning authors.
This file is part of lightning.

lightning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lightning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lightning.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package lightningutil is the command-line interface for the
// lightning case-study toolkit.
package lightningutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lightning"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information and the commands that use it.
type Cfg struct {
	*viper.Viper

	// Root is the main command.
	Root *cobra.Command

	versionCmd, preprocCmd, caseStudyCmd *cobra.Command

	// Log receives log messages.
	Log *logrus.Logger

	// Display shows finished figures when the "show" option is set.
	Display lightning.Displayer
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates a new configuration with its commands
// and options.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper:   viper.New(),
		Log:     logrus.New(),
		Display: lightning.OpenDisplayer,
	}

	cfg.Root = &cobra.Command{
		Use:   "lightning",
		Short: "Lightning case-study maps from GEOS and GLM data.",
		Long: `lightning preprocesses NASA GEOS model output and GLM lightning
observations and draws case-study maps comparing them.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'LIGHTNING_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'. File paths are
additionally allowed to contain environment variables within them.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of lightning.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("Lightning v%s\n", lightning.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.preprocCmd = &cobra.Command{
		Use:   "preproc",
		Short: "Preprocess a GEOS or GLM file",
		Long: `preproc reads a raw GEOS or GLM NetCDF file, converts its Days and
Hours dimensions to an hour-ending Datetime axis and masks missing values.
It logs a summary of the result and, if --output is set, saves the
preprocessed field for use by casestudy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			path := os.ExpandEnv(cfg.GetString("file"))
			if path == "" {
				return fmt.Errorf("lightningutil: the 'file' option must be specified")
			}
			vars, err := variables(cfg.Viper, "variables")
			if err != nil {
				return err
			}
			return Preproc(cfg.preprocessor(), maybeDownload(ctx, path, cfg.Log), vars,
				os.ExpandEnv(cfg.GetString("output")), cfg.Log)
		},
		DisableAutoGenTag: true,
	}

	cfg.caseStudyCmd = &cobra.Command{
		Use:   "casestudy",
		Short: "Plot a case study",
		Long: `casestudy draws a model field as a pseudocolor map of the case-study
window on a Mercator projection, overlays solid contours of the first
observation field and dashed contours of the second, adds coastlines and
state boundaries, and saves and shows the figure. Inputs may be raw
files or files written by preproc --output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.caseStudy(context.Background())
		},
		DisableAutoGenTag: true,
	}

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "file",
			usage: `
              file is the path or URL of the raw GEOS or GLM file to preprocess.
              The year and month of the data are read from the six characters
              before ".r180W" in the file name.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.preprocCmd.Flags()},
		},
		{
			name: "variables",
			usage: `
              variables lists the names of the variables to look for in the
              input file, in order of preference. The first one present is used.`,
			defaultVal: lightning.KnownVariables,
			flagsets:   []*pflag.FlagSet{cfg.preprocCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is where the preprocessed field is saved in NetCDF format.
              Nothing is saved if it is empty.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.preprocCmd.Flags()},
		},
		{
			name: "model",
			usage: `
              model is the path or URL of the GEOS model file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "obs1",
			usage: `
              obs1 is the path or URL of the file with the first GLM
              observation field, drawn with solid contours.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "obs2",
			usage: `
              obs2 is the path or URL of the file with the second GLM
              observation field, drawn with dashed contours.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "lon",
			usage: `
              lon is the longitude range of the case-study window, in degrees,
              as two comma-separated numbers.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "lat",
			usage: `
              lat is the latitude range of the case-study window, in degrees,
              as two comma-separated numbers.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "time",
			usage: `
              time is the timestamp of the case study, for example
              2019-07-05T20:00:00. Timestamps label the end of the hour they
              summarize.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "show",
			usage: `
              show specifies whether to open the finished figure in the
              default image viewer.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.ModelVariables",
			usage: `
              CaseStudy.ModelVariables lists the candidate variables of the
              model file, in order of preference.`,
			defaultVal: lightning.KnownVariables,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Obs1Variables",
			usage: `
              CaseStudy.Obs1Variables lists the candidate variables of the
              obs1 file, in order of preference.`,
			defaultVal: lightning.KnownVariables,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Obs2Variables",
			usage: `
              CaseStudy.Obs2Variables lists the candidate variables of the
              obs2 file, in order of preference.`,
			defaultVal: lightning.KnownVariables,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.VMin",
			usage: `
              CaseStudy.VMin is the lower limit of the model color scale. If it
              is empty the minimum of the data in the window is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.VMax",
			usage: `
              CaseStudy.VMax is the upper limit of the model color scale. If it
              is empty the maximum of the data in the window is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.ColorMap",
			usage: `
              CaseStudy.ColorMap is the name of the model colormap. Add "_r"
              to reverse it.`,
			defaultVal: lightning.DefaultColorMap,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Levels1",
			usage: `
              CaseStudy.Levels1 are the contour levels of obs1. They are chosen
              from the data if empty.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Color1",
			usage: `
              CaseStudy.Color1 is the color of the obs1 contours.`,
			defaultVal: lightning.DefaultColor1,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Label1",
			usage: `
              CaseStudy.Label1 is the legend label of the obs1 contours.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Levels2",
			usage: `
              CaseStudy.Levels2 are the contour levels of obs2. They are chosen
              from the data if empty.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Color2",
			usage: `
              CaseStudy.Color2 is the color of the obs2 contours.`,
			defaultVal: lightning.DefaultColor2,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Label2",
			usage: `
              CaseStudy.Label2 is the legend label of the obs2 contours.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.ColorBarLabel",
			usage: `
              CaseStudy.ColorBarLabel labels the model color bar.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.LegendFaceColor",
			usage: `
              CaseStudy.LegendFaceColor is the background color of the legend.`,
			defaultVal: lightning.DefaultLegendFaceColor,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Title",
			usage: `
              CaseStudy.Title is the figure title.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.SavePath",
			usage: `
              CaseStudy.SavePath is where the figure is saved. The format is
              chosen by the extension: .png, .jpg, .tif, .svg, .pdf or .eps.
              The figure is not saved if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.Width",
			usage: `
              CaseStudy.Width is the figure width in inches.`,
			defaultVal: 6.4,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "CaseStudy.DPI",
			usage: `
              CaseStudy.DPI is the resolution of raster images.`,
			defaultVal: lightning.DefaultDPI,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "Basemap.Coastlines",
			usage: `
              Basemap.Coastlines is the path or URL of a shapefile (or a zip
              archive containing one) with coastlines. No coastlines are drawn
              if it is empty.`,
			defaultVal: lightning.DefaultCoastlines,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
		{
			name: "Basemap.States",
			usage: `
              Basemap.States is the path or URL of a shapefile (or a zip
              archive containing one) with state and province boundaries.
              No boundaries are drawn if it is empty.`,
			defaultVal: lightning.DefaultStates,
			flagsets:   []*pflag.FlagSet{cfg.caseStudyCmd.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("LIGHTNING")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	cfg.Root.AddCommand(cfg.versionCmd)
	cfg.Root.AddCommand(cfg.preprocCmd)
	cfg.Root.AddCommand(cfg.caseStudyCmd)
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("lightningutil: problem reading configuration file: %v", err)
		}
	}
	if cfg.GetBool("verbose") {
		cfg.Log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func (cfg *Cfg) preprocessor() *lightning.Preprocessor {
	p := lightning.NewPreprocessor()
	p.Log = cfg.Log
	return p
}

// caseStudy runs the casestudy command.
func (cfg *Cfg) caseStudy(ctx context.Context) error {
	w, err := window(cfg.Viper)
	if err != nil {
		return err
	}
	pc, err := plotConfig(cfg.Viper)
	if err != nil {
		return err
	}

	p := cfg.preprocessor()
	var fields [3]*lightning.GriddedField
	for i, in := range []struct{ file, vars string }{
		{file: "model", vars: "CaseStudy.ModelVariables"},
		{file: "obs1", vars: "CaseStudy.Obs1Variables"},
		{file: "obs2", vars: "CaseStudy.Obs2Variables"},
	} {
		path := os.ExpandEnv(cfg.GetString(in.file))
		if path == "" {
			return fmt.Errorf("lightningutil: the '%s' option must be specified", in.file)
		}
		vars, err := variables(cfg.Viper, in.vars)
		if err != nil {
			return err
		}
		if fields[i], err = p.OpenField(maybeDownload(ctx, path, cfg.Log), vars); err != nil {
			return err
		}
	}

	basemap, err := lightning.LoadBasemap(
		maybeDownload(ctx, os.ExpandEnv(cfg.GetString("Basemap.Coastlines")), cfg.Log),
		maybeDownload(ctx, os.ExpandEnv(cfg.GetString("Basemap.States")), cfg.Log),
	)
	if err != nil {
		return err
	}

	display := cfg.Display
	if !cfg.GetBool("show") {
		display = nil
	}
	return lightning.CaseStudyPlot(fields[0], fields[1], fields[2], w, pc,
		lightning.WithBasemap(basemap),
		lightning.WithDisplayer(display),
		lightning.WithLogger(cfg.Log),
	)
}
