package main

import (
	_ "embed" // Support for go:embed resources
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
	"gopkg.in/ini.v1"
)

//go:embed resources/defaultConfig.ini
var defaultConfig []byte

type Config struct {
	Def     string
	IniFile *ini.File
	Physics struct {
		Density        float32 `ini:"Density"`
		AngularDamping float32 `ini:"AngularDamping"`
		Group          uint16  `ini:"Group"`
		Gravity        float32 `ini:"Gravity"`
		TimeStep       float32 `ini:"TimeStep"`
		Ground         float32 `ini:"Ground"`
	} `ini:"Physics"`
	Ragdoll struct {
		Layout          string  `ini:"Layout"`
		Model           string  `ini:"Model"`
		MovingThreshold float32 `ini:"MovingThreshold"`
		ReleaseJoints   bool    `ini:"ReleaseJoints"`
	} `ini:"Ragdoll"`
	Simulation struct {
		Frames      int32  `ini:"Frames"`
		SwitchFrame int32  `ini:"SwitchFrame"`
		Script      string `ini:"Script"`
		Snapshot    string `ini:"Snapshot"`
	} `ini:"Simulation"`
}

func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Loads and parses the INI file into a Config struct.
func loadConfig(def string) (*Config, error) {
	options := ini.LoadOptions{
		Insensitive:             false,
		IgnoreInlineComment:     false,
		SkipUnrecognizableLines: true,
		AllowShadows:            false,
	}

	var iniFile *ini.File
	var err error
	if fp := FileExist(def); len(fp) == 0 {
		iniFile, err = ini.LoadSources(options, defaultConfig)
	} else {
		iniFile, err = ini.LoadSources(options, defaultConfig, fp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %v", err)
	}
	c := Config{Def: def, IniFile: iniFile}
	if err := iniFile.MapTo(&c); err != nil {
		return nil, fmt.Errorf("failed to map config %s: %w", def, err)
	}
	c.normalize()
	c.applyFlags()
	return &c, nil
}

// Normalize values
func (c *Config) normalize() {
	c.set("Physics", "Density", Clamp(c.Physics.Density, 0.001, 10000), &c.Physics.Density)
	c.set("Physics", "AngularDamping", Clamp(c.Physics.AngularDamping, 0, 1), &c.Physics.AngularDamping)
	c.set("Physics", "TimeStep", Clamp(c.Physics.TimeStep, 0.001, 0.1), &c.Physics.TimeStep)
	c.set("Ragdoll", "MovingThreshold", Clamp(c.Ragdoll.MovingThreshold, 0, 1000), &c.Ragdoll.MovingThreshold)
	c.set("Simulation", "Frames", Clamp(c.Simulation.Frames, 0, 1000000), &c.Simulation.Frames)
	if c.Simulation.SwitchFrame < -1 {
		c.set("Simulation", "SwitchFrame", int32(-1), &c.Simulation.SwitchFrame)
	}
}

// set stores v in both the struct field and the ini file, so that Save
// writes what is actually used.
func (c *Config) set(section, key string, v interface{}, field interface{}) {
	switch f := field.(type) {
	case *float32:
		*f = v.(float32)
	case *int32:
		*f = v.(int32)
	case *string:
		*f = v.(string)
	case *bool:
		*f = v.(bool)
	}
	c.IniFile.Section(section).Key(key).SetValue(fmt.Sprint(v))
}

// Command line flags override the file for this run only.
func (c *Config) applyFlags() {
	if v, ok := sys.cmdFlags["-layout"]; ok {
		c.Ragdoll.Layout = v
	}
	if v, ok := sys.cmdFlags["-model"]; ok {
		c.Ragdoll.Model = v
	}
	if v, ok := sys.cmdFlags["-script"]; ok {
		c.Simulation.Script = v
	}
	if v, ok := sys.cmdFlags["-snapshot"]; ok {
		c.Simulation.Snapshot = v
	}
	if _, ok := sys.cmdFlags["-releasejoints"]; ok {
		c.Ragdoll.ReleaseJoints = true
	}
	if v, ok := sys.cmdFlags["-frames"]; ok {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			c.Simulation.Frames = Clamp(int32(n), 0, 1000000)
		}
	}
	if v, ok := sys.cmdFlags["-switch"]; ok {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			c.Simulation.SwitchFrame = int32(n)
		}
	}
}

// Save writes the current IniFile to disk, preserving comments and syntax.
func (c *Config) Save(file string) error {
	return c.IniFile.SaveTo(file)
}
